package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/unkn0wn-root/orchid"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	v     *viper.Viper
	log   orchid.Logger
	level orchid.Level
	// slog backs the cache event hooks whatever the log backend is.
	slog *slog.Logger
	// stderr is shared by the logger and every child process; writes are serialized.
	stderr io.Writer
}

// NewRootCmd creates the root command with the run and batch subcommands.
// Settings resolve flag > ORCHID_* env > config file > default.
func NewRootCmd(ver string) *cobra.Command {
	a := &app{v: viper.New(), log: orchid.NopLogger{}}

	cmd := &cobra.Command{
		Use:           "orchid",
		Short:         "Run commands with timing, chat notifications, batching and memoization",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			a.stderr = zerolog.SyncWriter(cmd.ErrOrStderr())
			return a.setupLogging(a.stderr, isTerminal(cmd.ErrOrStderr()))
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (yaml, toml or json)")
	pf.Bool("debug", false, "enable debug logging")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-backend", "zerolog", "logging library: zerolog, slog, logrus, zap or apex")
	cmd.AddCommand(newRunCmd(a), newBatchCmd(a))
	return cmd
}

const rootCmdExample = `  # Time a build and report it to Slack
  orchid run --webhook-url "$SLACK_HOOK" --tag U024BE7LH -- make release

  # Keep going when the child fails
  orchid run --allow-fail -- ./flaky-check.sh

  # Resize images four batches at a time
  ls *.png | orchid batch -p 4 -- mogrify -resize 50%`

// ExitError carries a child's exit status up to main.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode maps an Execute error to a process exit status, printing it to w
// unless it is an ExitError.
func ExitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
	return 1
}
