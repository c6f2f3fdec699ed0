// Package integration runs the tracker binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// trackerBin is the path to the built tracker binary.
	trackerBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot walks up from the working directory to the directory
// holding go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv is an isolated config and data directory for one backend.
type TestEnv struct {
	t       *testing.T
	Backend string
	Config  string
	DataDir string
}

// NewTestEnv creates a fresh environment using backend.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()
	if buildErr != nil {
		t.Fatalf("failed to build tracker: %v", buildErr)
	}
	if trackerBin == "" {
		t.Fatal("tracker binary not built")
	}

	tempDir := t.TempDir()
	dataDir := filepath.Join(tempDir, "data")
	configDir := filepath.Join(tempDir, "config")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "backend: " + backend + "\ndata_dir: " + dataDir + "\nlog_level: error\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return &TestEnv{t: t, Backend: backend, Config: configDir, DataDir: dataDir}
}

// CmdResult holds the result of one tracker invocation.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run executes the tracker binary against the environment.
func (e *TestEnv) Run(args ...string) CmdResult {
	e.t.Helper()

	all := append([]string{"--config-dir", e.Config}, args...)
	cmd := exec.Command(trackerBin, all...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			e.t.Fatalf("failed to run tracker: %v", err)
		}
		exitCode = exitErr.ExitCode()
	}
	return CmdResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode}
}

// MustRun executes the tracker binary and fails the test on a non-zero exit.
func (e *TestEnv) MustRun(args ...string) CmdResult {
	e.t.Helper()
	r := e.Run(args...)
	if r.ExitCode != 0 {
		e.t.Fatalf("tracker %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, r.ExitCode, r.Stdout, r.Stderr)
	}
	return r
}

// MustRunJSON runs a command with --json and decodes its output.
func MustRunJSON[T any](e *TestEnv, args ...string) T {
	e.t.Helper()
	r := e.MustRun(append([]string{"--json"}, args...)...)
	var out T
	if err := json.Unmarshal([]byte(r.Stdout), &out); err != nil {
		e.t.Fatalf("failed to parse JSON %q: %v", r.Stdout, err)
	}
	return out
}

// created is the --json output of every add command.
type created struct {
	ID int64 `json:"id"`
}

// isUUIDv7 checks the textual layout and version nibble of a UUID.
func isUUIDv7(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	return s[14] == '7'
}
