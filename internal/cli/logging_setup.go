package cli

import (
	"fmt"
	"io"
	stdslog "log/slog"
	"os"
	"time"

	apexlog "github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/unkn0wn-root/orchid"
	apexadapter "github.com/unkn0wn-root/orchid/log/apex"
	logrusadapter "github.com/unkn0wn-root/orchid/log/logrus"
	slogadapter "github.com/unkn0wn-root/orchid/log/slog"
	zapadapter "github.com/unkn0wn-root/orchid/log/zap"
	zlog "github.com/unkn0wn-root/orchid/log/zerolog"
)

// isTerminal checks if w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// setupLogging points the app logger at w, human-readable, at the configured
// level and through the configured backend (zerolog unless told otherwise).
func (a *app) setupLogging(w io.Writer, tty bool) error {
	lvl, err := orchid.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if a.v.GetBool("debug") {
		lvl = orchid.LevelDebug
	}
	a.level = lvl
	a.slog = stdslog.New(stdslog.NewTextHandler(w, &stdslog.HandlerOptions{Level: slogLevels[lvl]}))

	switch backend := a.v.GetString("log-backend"); backend {
	case "", "zerolog":
		out := zerolog.ConsoleWriter{Out: w, NoColor: !tty, TimeFormat: time.TimeOnly}
		l := zerolog.New(out).Level(zerologLevels[lvl]).With().Timestamp().Str("component", "cli").Logger()
		a.log = zlog.Logger{L: l}
	case "slog":
		a.log = slogadapter.Logger{L: a.slog}
	case "logrus":
		l := logrus.New()
		l.SetOutput(w)
		l.SetLevel(logrusLevels[lvl])
		l.SetFormatter(&logrus.TextFormatter{DisableColors: !tty})
		a.log = logrusadapter.New(l)
	case "zap":
		enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		a.log = zapadapter.Logger{L: zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapLevels[lvl]))}
	case "apex":
		a.log = apexadapter.Logger{L: &apexlog.Logger{Handler: text.New(w), Level: apexLevels[lvl]}}
	default:
		return fmt.Errorf("unknown log backend %q", backend)
	}
	return nil
}

var (
	zerologLevels = map[orchid.Level]zerolog.Level{
		orchid.LevelDebug: zerolog.DebugLevel,
		orchid.LevelInfo:  zerolog.InfoLevel,
		orchid.LevelWarn:  zerolog.WarnLevel,
		orchid.LevelError: zerolog.ErrorLevel,
	}
	slogLevels = map[orchid.Level]stdslog.Level{
		orchid.LevelDebug: stdslog.LevelDebug,
		orchid.LevelInfo:  stdslog.LevelInfo,
		orchid.LevelWarn:  stdslog.LevelWarn,
		orchid.LevelError: stdslog.LevelError,
	}
	logrusLevels = map[orchid.Level]logrus.Level{
		orchid.LevelDebug: logrus.DebugLevel,
		orchid.LevelInfo:  logrus.InfoLevel,
		orchid.LevelWarn:  logrus.WarnLevel,
		orchid.LevelError: logrus.ErrorLevel,
	}
	zapLevels = map[orchid.Level]zapcore.Level{
		orchid.LevelDebug: zapcore.DebugLevel,
		orchid.LevelInfo:  zapcore.InfoLevel,
		orchid.LevelWarn:  zapcore.WarnLevel,
		orchid.LevelError: zapcore.ErrorLevel,
	}
	apexLevels = map[orchid.Level]apexlog.Level{
		orchid.LevelDebug: apexlog.DebugLevel,
		orchid.LevelInfo:  apexlog.InfoLevel,
		orchid.LevelWarn:  apexlog.WarnLevel,
		orchid.LevelError: apexlog.ErrorLevel,
	}
)
