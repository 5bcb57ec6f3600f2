package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/orchid"
	"github.com/unkn0wn-root/orchid/codec"
	asynchook "github.com/unkn0wn-root/orchid/hooks/async"
	"github.com/unkn0wn-root/orchid/memo"
	"github.com/unkn0wn-root/orchid/parallel"
	"github.com/unkn0wn-root/orchid/provider/bigcache"
	"github.com/unkn0wn-root/orchid/provider/ristretto"
	"github.com/unkn0wn-root/orchid/sloghooks"
)

// maxCachedOutput bounds one batch's stdout kept by the bigcache provider.
const maxCachedOutput = 1 << 20

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] -- command [args...]",
		Short: "Split stdin lines into batches and run command once per batch, in parallel",
		Long: `Reads stdin, one item per line, splits the items into at most -p contiguous
batches and runs command once per batch with the batch's items appended as
arguments. Each batch's stdout is printed in batch order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.batch(cmd, args)
		},
	}

	f := cmd.Flags()
	f.IntP("parallelism", "p", runtime.NumCPU(), "number of batches and concurrent workers")
	f.String("prefer", "goroutines", "execution mode: goroutines, threads or processes")
	f.Bool("sequential", false, "run batches one after another")
	f.Bool("dedupe", false, "run identical batches once and reuse their output")
	f.Int("cache-size", 128, "max memoized batch outputs (with --dedupe)")
	f.String("cache-provider", "bounded", "memo store: bounded, ristretto or bigcache")
	return cmd
}

func (a *app) batch(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	lines, err := readLines(cmd.InOrStdin())
	if err != nil {
		return err
	}
	prefer, err := parallel.ParsePrefer(a.v.GetString("prefer"))
	if err != nil {
		return err
	}

	// children share a file directly; any other writer goes through the
	// serialized one, since exec copies into it from one goroutine per child
	var childErr io.Writer = a.stderr
	if f, ok := cmd.ErrOrStderr().(*os.File); ok {
		childErr = f
	}

	run := func(ctx context.Context, batch []string) ([]byte, error) {
		args := append(append([]string(nil), argv[1:]...), batch...)
		c := exec.CommandContext(ctx, argv[0], args...)
		var out bytes.Buffer
		c.Stdout = &out
		c.Stderr = childErr
		if err := c.Run(); err != nil {
			return nil, fmt.Errorf("batch starting at %q: %w", batch[0], err)
		}
		return out.Bytes(), nil
	}

	if a.v.GetBool("dedupe") {
		var hooks *asynchook.Hooks
		if a.level == orchid.LevelDebug {
			hooks = asynchook.New(sloghooks.New(a.slog, sloghooks.Options{}), 1, 256)
		}
		cache, err := a.outputCache(hooks)
		if err != nil {
			if hooks != nil {
				hooks.Close()
			}
			return err
		}
		defer func() {
			if hooks != nil {
				hooks.Close()
			}
			st := cache.Stats()
			a.log.Debug("batch cache", orchid.Fields{"hits": st.Hits, "misses": st.Misses, "rejected": st.Rejected})
			_ = cache.Close(ctx)
		}()
		direct := run
		keyed := memo.Memoize(cache, func(ctx context.Context, key string) ([]byte, error) {
			return direct(ctx, strings.Split(key, "\n"))
		})
		run = func(ctx context.Context, batch []string) ([]byte, error) {
			return keyed(ctx, strings.Join(batch, "\n"))
		}
	}

	opts := parallel.Options{
		Parallelism: a.v.GetInt("parallelism"),
		Prefer:      prefer,
		Logger:      a.log,
		Name:        filepath.Base(argv[0]),
	}
	if a.v.GetBool("sequential") {
		opts.Engine = parallel.Sequential{}
	}
	par, err := parallel.Parallelize(opts, run)
	if err != nil {
		return err
	}
	outs, err := par(ctx, lines)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	var total uint64
	for _, o := range outs {
		if _, err := w.Write(o); err != nil {
			return err
		}
		total += uint64(len(o))
	}
	a.log.Info("batch finished", orchid.Fields{
		"items":   humanize.Comma(int64(len(lines))),
		"batches": len(outs),
		"output":  humanize.Bytes(total),
	})
	return nil
}

func (a *app) outputCache(hooks *asynchook.Hooks) (memo.Cache[[]byte], error) {
	size := a.v.GetInt("cache-size")
	opts := memo.Options[[]byte]{
		Namespace:    "orchid:batch",
		MaxSize:      size,
		Logger:       a.log,
		SingleFlight: true,
	}
	if hooks != nil {
		opts.Hooks = hooks
	}
	switch kind := a.v.GetString("cache-provider"); kind {
	case "", "bounded":
	case "ristretto":
		p, err := ristretto.New[[]byte](ristretto.Config{MaxEntries: int64(size), Sync: true})
		if err != nil {
			return nil, err
		}
		opts.Provider = p
	case "bigcache":
		p, err := bigcache.New[[]byte](bigcache.Config{Shards: 16, MaxEntriesInWindow: 4096, HardMaxCacheSizeMB: 64},
			codec.Limit[[]byte]{Inner: codec.Bytes{}, Max: maxCachedOutput})
		if err != nil {
			return nil, err
		}
		opts.Provider = p
	default:
		return nil, fmt.Errorf("unknown cache provider %q", kind)
	}
	return memo.New(opts)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return lines, nil
}
