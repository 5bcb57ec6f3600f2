// Package apex adapts an apex/log Interface to orchid.Logger.
package apex

import (
	"github.com/apex/log"

	"github.com/unkn0wn-root/orchid"
)

var _ orchid.Logger = Logger{}

type Logger struct{ L log.Interface }

func (a Logger) Debug(msg string, f orchid.Fields) { a.with(f).Debug(msg) }
func (a Logger) Info(msg string, f orchid.Fields)  { a.with(f).Info(msg) }
func (a Logger) Warn(msg string, f orchid.Fields)  { a.with(f).Warn(msg) }
func (a Logger) Error(msg string, f orchid.Fields) { a.with(f).Error(msg) }

func (a Logger) with(f orchid.Fields) log.Interface {
	if len(f) == 0 {
		return a.L
	}
	return a.L.WithFields(log.Fields(f))
}
