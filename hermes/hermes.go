// Package hermes reports a function's progress to a chat channel: a message
// before the call, one after it finishes, and two when it fails (the notice
// and the error text).
//
// Policy on failure: the wrapped function's error is always returned to the
// caller. Delivery problems with the webhook itself are logged and never
// change the wrapped function's result.
package hermes

import (
	"context"
	"errors"
	"time"

	"github.com/unkn0wn-root/orchid"
)

var ErrNoWebhook = errors.New("hermes: webhook is required")

const timestampLayout = "2006-01-02 15:04:05"

type Options struct {
	Webhook   Webhook
	Tag       string // user/role id to mention; "" => no mention
	Timestamp bool   // append " (YYYY-MM-DD HH:MM:SS)" to each status message
	Now       func() time.Time
	Logger    orchid.Logger
}

type Notifier struct {
	hook      Webhook
	tag       string
	timestamp bool
	now       func() time.Time
	log       orchid.Logger
}

func New(opts Options) (*Notifier, error) {
	if opts.Webhook == nil {
		return nil, ErrNoWebhook
	}
	n := &Notifier{
		hook:      opts.Webhook,
		tag:       opts.Tag,
		timestamp: opts.Timestamp,
		now:       opts.Now,
		log:       orchid.Coalesce[orchid.Logger](opts.Logger, orchid.NopLogger{}),
	}
	if n.now == nil {
		n.now = time.Now
	}
	return n, nil
}

// Format applies the mention prefix and timestamp suffix.
func (n *Notifier) Format(msg string) string {
	if n.tag != "" {
		msg = "<@" + n.tag + "> - " + msg
	}
	if n.timestamp {
		msg += " (" + n.now().Format(timestampLayout) + ")"
	}
	return msg
}

// Notify sends msg as is; failures are logged and returned.
func (n *Notifier) Notify(ctx context.Context, msg string) error {
	if err := n.hook.Send(ctx, msg); err != nil {
		n.log.Warn("hermes notification failed", orchid.Fields{"msg": msg, "err": err})
		return err
	}
	return nil
}

// Run calls fn between progress notifications and returns fn's error.
func (n *Notifier) Run(ctx context.Context, name string, fn func(context.Context) error) error {
	_ = n.Notify(ctx, n.Format("Calling "+name))
	if err := fn(ctx); err != nil {
		_ = n.Notify(ctx, n.Format(name+" has failed!"))
		_ = n.Notify(ctx, err.Error())
		return err
	}
	_ = n.Notify(ctx, n.Format(name+" has finished!"))
	return nil
}

// Wrap returns fn reporting through n under name.
func Wrap[A, R any](n *Notifier, name string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	return func(ctx context.Context, a A) (R, error) {
		var r R
		err := n.Run(ctx, name, func(ctx context.Context) error {
			var err error
			r, err = fn(ctx, a)
			return err
		})
		return r, err
	}
}
