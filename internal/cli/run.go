package cli

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/orchid"
	"github.com/unkn0wn-root/orchid/catch"
	"github.com/unkn0wn-root/orchid/hermes"
	"github.com/unkn0wn-root/orchid/timer"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command under the timer, the chat notifier and the error handler",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args)
		},
	}

	f := cmd.Flags()
	f.String("name", "", "name used in reports (default: command base name)")
	f.Bool("allow-fail", false, "log a non-zero exit and exit 0")
	f.String("webhook-url", "", "Slack or Discord webhook URL; empty disables notifications")
	f.String("webhook-kind", "slack", "webhook flavor: slack or discord")
	f.String("tag", "", "user id to mention in notifications")
	f.Bool("timestamp", false, "append a timestamp to notifications")
	f.Float64("rate", 1, "max notifications per second (0 = unlimited)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, argv []string) error {
	name := a.v.GetString("name")
	if name == "" {
		name = filepath.Base(argv[0])
	}

	child := func(ctx context.Context, argv []string) (int, error) {
		c := exec.CommandContext(ctx, argv[0], argv[1:]...)
		c.Stdin = cmd.InOrStdin()
		c.Stdout = cmd.OutOrStdout()
		c.Stderr = cmd.ErrOrStderr()
		if err := c.Run(); err != nil {
			return c.ProcessState.ExitCode(), err
		}
		return 0, nil
	}

	fn := timer.Wrap(timer.Options{Name: name, Logger: a.log}, child)
	if url := a.v.GetString("webhook-url"); url != "" {
		n, err := a.notifier(url)
		if err != nil {
			return err
		}
		fn = hermes.Wrap(n, name, fn)
	}

	var handlers []catch.Handler[int]
	if a.v.GetBool("allow-fail") {
		handlers = append(handlers, catch.On[*exec.ExitError](catch.Options[int]{
			Intercept: true,
			Callbacks: []catch.Callback{func(c catch.Call) {
				a.log.Warn("command failed, continuing", orchid.Fields{"func": name, "err": c.Err})
			}},
		}))
	}

	if _, err := catch.Wrap(fn, handlers...)(cmd.Context(), argv); err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return &ExitError{Code: ee.ExitCode()}
		}
		return err
	}
	return nil
}

func (a *app) notifier(url string) (*hermes.Notifier, error) {
	cfg := hermes.Config{URL: url, Logger: a.log}
	if r := a.v.GetFloat64("rate"); r > 0 {
		cfg.Limiter = rate.NewLimiter(rate.Limit(r), 1)
	}
	hook, err := hermes.NewWebhook(a.v.GetString("webhook-kind"), cfg)
	if err != nil {
		return nil, err
	}
	return hermes.New(hermes.Options{
		Webhook:   hook,
		Tag:       a.v.GetString("tag"),
		Timestamp: a.v.GetBool("timestamp"),
		Logger:    a.log,
	})
}
