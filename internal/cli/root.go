// Package cli implements the tracker command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/tracker/internal/logging"
	"github.com/mesh-intelligence/tracker/internal/paths"
	"github.com/mesh-intelligence/tracker/internal/tracker"
	"github.com/mesh-intelligence/tracker/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// noStorage marks commands that run without opening a backend.
const noStorage = "no-storage"

// app holds the state of one invocation: parsed global flags, the opened
// tracker and the session. Nothing here outlives the command.
type app struct {
	configDir string
	dataDir   string
	backend   string
	as        string
	jsonMode  bool

	cfg     types.Config
	log     *zap.Logger
	tracker *tracker.Tracker
	session Session
}

// NewRootCmd creates the top-level "tracker" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "tracker",
		Short: "A project tracker over relational, CSV or XML storage",
		Long: "Tracker records users, projects, sprints, tasks and retrospectives\n" +
			"in SQLite, PostgreSQL, CSV files or XML documents.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	pf.StringVar(&a.backend, "backend", "", "storage backend: sqlite, postgres, csv or xml")
	pf.StringVar(&a.as, "as", "", "act as the user with this email")
	pf.BoolVar(&a.jsonMode, "json", false, "output as JSON")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newLoginCmd(),
		a.newUserCmd(),
		a.newProjectCmd(),
		a.newMemberCmd(),
		a.newSprintCmd(),
		a.newTaskCmd(),
		a.newRetroCmd(),
		a.newExportCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stderr)
}

func run(root *cobra.Command, args []string, stderr io.Writer) int {
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// sysError marks failures of the environment rather than of the input.
type sysError struct{ err error }

func (e sysError) Error() string { return e.err.Error() }
func (e sysError) Unwrap() error { return e.err }

// exitCode maps an error to the exit code reported for it.
func exitCode(err error) int {
	var se sysError
	if errors.As(err, &se) || errors.Is(err, types.ErrStorageIO) {
		return exitSysError
	}
	return exitUserError
}

// open loads configuration, opens the tracker and builds the session.
func (a *app) open(cmd *cobra.Command, args []string) error {
	if cmd.Annotations[noStorage] != "" || cmd.Name() == "help" {
		return nil
	}
	if cmd.HasParent() && cmd.Parent().Name() == "completion" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return sysError{fmt.Errorf("resolve config dir: %w", err)}
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError{err}
	}
	dataDir, err := paths.ResolveDataDir(a.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return sysError{fmt.Errorf("resolve data dir: %w", err)}
	}

	backend := a.backend
	if backend == "" {
		backend = v.GetString(cfgKeyBackend)
	}
	a.cfg = types.Config{Backend: backend, DataDir: dataDir, DSN: v.GetString(cfgKeyDSN)}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return sysError{fmt.Errorf("generating session id: %w", err)}
	}
	a.log = log.With(zap.String("session", id.String()))
	a.session = Session{ID: id.String()}

	a.tracker, err = tracker.Open(a.cfg, tracker.WithLogger(a.log))
	if err != nil {
		return err
	}
	if a.as != "" {
		u, err := a.tracker.FindUserByEmail(a.as)
		if err != nil {
			return fmt.Errorf("--as: %w", err)
		}
		a.session.User = &u
	}
	a.log.Debug("session started", zap.String("backend", backend), zap.String("data_dir", dataDir))
	return nil
}

func (a *app) close() error {
	if a.tracker == nil {
		return nil
	}
	err := a.tracker.Close()
	a.tracker = nil
	_ = a.log.Sync()
	return err
}
