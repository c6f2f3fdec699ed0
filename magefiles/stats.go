//go:build mage

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Stats builds the binary, exports the store in dataDir through the given
// backend and prints the readable record count of every table plus the
// task count per status as one JSON record.
//
//	mage stats .tracker csv
func Stats(dataDir, backend string) error {
	mg.Deps(Build)
	out, err := sh.Output(filepath.Join(binaryDir, binaryName),
		"--data-dir", dataDir, "--backend", backend, "export", "--format", "json")
	if err != nil {
		return fmt.Errorf("exporting %s: %w", dataDir, err)
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &snapshot); err != nil {
		return fmt.Errorf("decoding export: %w", err)
	}
	counts := make(map[string]int, len(snapshot))
	for table, raw := range snapshot {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Errorf("decoding %s: %w", table, err)
		}
		counts[table] = len(items)
	}

	var tasks []struct {
		Status string `json:"status"`
	}
	if raw, ok := snapshot["tasks"]; ok {
		if err := json.Unmarshal(raw, &tasks); err != nil {
			return fmt.Errorf("decoding tasks: %w", err)
		}
	}
	byStatus := map[string]int{}
	for _, task := range tasks {
		byStatus[task.Status]++
	}

	line, err := json.Marshal(map[string]any{
		"backend":        backend,
		"records":        counts,
		"tasks_by_state": byStatus,
	})
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}
