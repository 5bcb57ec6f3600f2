// Package timer reports how long a wrapped call took.
package timer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/unkn0wn-root/orchid"
)

// Options choose where the measurement goes. With a Logger the formatted
// duration is the log message; without one it is printed as a line to Out.
type Options struct {
	Name   string        // added to log fields as "func"
	Logger orchid.Logger // nil => print to Out
	Level  orchid.Level  // Logger level; zero => Info
	Out    io.Writer     // nil => os.Stdout
}

// Wrap times every call of fn, successful or not, and returns fn's result
// unchanged.
func Wrap[A, R any](opts Options, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, a A) (R, error) {
		start := time.Now()
		r, err := fn(ctx, a)
		opts.report(time.Since(start), err)
		return r, err
	}
}

// WrapFunc is Wrap for a bare func() error.
func WrapFunc(opts Options, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		opts.report(time.Since(start), err)
		return err
	}
}

func (o Options) report(d time.Duration, err error) {
	msg := Format(d)
	if o.Logger == nil {
		out := o.Out
		if out == nil {
			out = os.Stdout
		}
		_, _ = fmt.Fprintln(out, msg)
		return
	}
	f := orchid.Fields{"elapsed": d}
	if o.Name != "" {
		f["func"] = o.Name
	}
	if err != nil {
		f["err"] = err
	}
	orchid.Log(o.Logger, o.Level, msg, f)
}

// Format renders d as H:MM:SS with sub-second precision dropped, and whole
// days as a "N day(s), " prefix: 3s => "0:00:03", 26h => "1 day, 2:00:00".
// Negative durations render as zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	hms := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	switch days {
	case 0:
		return hms
	case 1:
		return "1 day, " + hms
	default:
		return fmt.Sprintf("%d days, %s", days, hms)
	}
}
