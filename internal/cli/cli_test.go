package cli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/orchid/internal/cli"
	"github.com/unkn0wn-root/orchid/parallel"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

type chat struct {
	mu   sync.Mutex
	msgs []string
}

func (c *chat) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		c.mu.Lock()
		c.msgs = append(c.msgs, body["text"]+body["content"])
		c.mu.Unlock()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (c *chat) sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.msgs...)
}

func TestRootCmd(t *testing.T) {
	root := cli.NewRootCmd("1.2.3")
	assert.Equal(t, "orchid", root.Use)
	assert.Equal(t, "1.2.3", root.Version)

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["batch"])
}

func TestRunPassesOutputThrough(t *testing.T) {
	requireShell(t)
	out, errOut, err := execute(t, "", "run", "--", "sh", "-c", "echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
	assert.Contains(t, errOut, "sh")
}

func TestRunPropagatesExitStatus(t *testing.T) {
	requireShell(t)
	_, _, err := execute(t, "", "run", "--", "sh", "-c", "exit 3")
	require.Error(t, err)

	var ee *cli.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Code)
	assert.Equal(t, 3, cli.ExitCode(err, &bytes.Buffer{}))
}

func TestRunAllowFail(t *testing.T) {
	requireShell(t)
	_, errOut, err := execute(t, "", "run", "--allow-fail", "--", "sh", "-c", "exit 2")
	require.NoError(t, err)
	assert.Contains(t, errOut, "command failed, continuing")
}

func TestRunMissingBinaryIsAnError(t *testing.T) {
	_, _, err := execute(t, "", "run", "--allow-fail", "--", "orchid-no-such-binary-xyz")
	require.Error(t, err)
	var ee *cli.ExitError
	assert.False(t, errors.As(err, &ee))
}

func TestRunNotifiesWebhook(t *testing.T) {
	requireShell(t)
	var c chat
	srv := c.server(t)

	_, _, err := execute(t, "", "run", "--name", "greet", "--webhook-url", srv.URL, "--rate", "0", "--tag", "U1",
		"--", "sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{"<@U1> - Calling greet", "<@U1> - greet has finished!"}, c.sent())
}

func TestRunNotifiesFailure(t *testing.T) {
	requireShell(t)
	var c chat
	srv := c.server(t)

	_, _, err := execute(t, "", "run", "--name", "job", "--webhook-url", srv.URL, "--webhook-kind", "discord",
		"--rate", "0", "--", "sh", "-c", "exit 1")
	require.Error(t, err)
	assert.Equal(t, []string{"Calling job", "job has failed!", "exit status 1"}, c.sent())
}

func TestRunWebhookFromEnv(t *testing.T) {
	requireShell(t)
	var c chat
	srv := c.server(t)
	t.Setenv("ORCHID_WEBHOOK_URL", srv.URL)
	t.Setenv("ORCHID_RATE", "0")

	_, _, err := execute(t, "", "run", "--name", "envjob", "--", "sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{"Calling envjob", "envjob has finished!"}, c.sent())
}

func TestRunConfigFile(t *testing.T) {
	requireShell(t)
	var c chat
	srv := c.server(t)

	path := filepath.Join(t.TempDir(), "orchid.yaml")
	conf := "name: fromfile\nwebhook-url: " + srv.URL + "\nrate: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(conf), 0o600))

	_, _, err := execute(t, "", "--config", path, "run", "--", "sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{"Calling fromfile", "fromfile has finished!"}, c.sent())
}

func TestBadConfigFile(t *testing.T) {
	_, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "run", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "", "--log-level", "loud", "run", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestBatchOutputInBatchOrder(t *testing.T) {
	requireShell(t)
	// the first batch sleeps so it finishes last
	script := `case "$1" in a) sleep 0.1;; esac; echo "$@"`
	out, _, err := execute(t, "a\nb\nc\nd\ne\n", "batch", "-p", "2", "--", "sh", "-c", script, "sh")
	require.NoError(t, err)
	assert.Equal(t, "a b c\nd e\n", out)
}

func TestBatchSequentialAndThreads(t *testing.T) {
	requireShell(t)
	for _, args := range [][]string{
		{"batch", "-p", "3", "--sequential", "--", "echo"},
		{"batch", "-p", "3", "--prefer", "threads", "--", "echo"},
		{"batch", "-p", "3", "--prefer", "processes", "--", "echo"},
	} {
		out, _, err := execute(t, "1\n2\n3\n", args...)
		require.NoError(t, err, args)
		assert.Equal(t, "1\n2\n3\n", out, args)
	}
}

func TestBatchEmptyInput(t *testing.T) {
	out, _, err := execute(t, "\n\n", "batch", "-p", "2", "--", "orchid-no-such-binary-xyz")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBatchFailure(t *testing.T) {
	requireShell(t)
	_, _, err := execute(t, "a\nb\n", "batch", "-p", "2", "--", "sh", "-c", `[ "$1" = a ] || exit 1; echo "$1"`, "sh")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestBatchInvalidOptions(t *testing.T) {
	_, _, err := execute(t, "a\n", "batch", "-p", "0", "--", "echo")
	require.ErrorIs(t, err, parallel.ErrInvalidParallelism)

	_, _, err = execute(t, "a\n", "batch", "--prefer", "fibers", "--", "echo")
	require.Error(t, err)

	_, _, err = execute(t, "a\n", "batch", "--dedupe", "--cache-provider", "redis", "--", "echo")
	require.Error(t, err)
}

func TestBatchDedupe(t *testing.T) {
	requireShell(t)
	for _, provider := range []string{"bounded", "ristretto", "bigcache"} {
		t.Run(provider, func(t *testing.T) {
			counter := filepath.Join(t.TempDir(), "runs")
			script := `echo run >> "$0"; echo "$@"`
			out, _, err := execute(t, "x\nx\nx\n", "batch", "-p", "3", "--dedupe", "--cache-provider", provider,
				"--", "sh", "-c", script, counter)
			require.NoError(t, err)
			assert.Equal(t, "x\nx\nx\n", out)

			runs, err := os.ReadFile(counter)
			require.NoError(t, err)
			assert.Equal(t, 1, strings.Count(string(runs), "run"))
		})
	}
}

func TestExitCode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, 0, cli.ExitCode(nil, &buf))
	assert.Equal(t, 1, cli.ExitCode(errors.New("boom"), &buf))
	assert.Contains(t, buf.String(), "boom")
	assert.Equal(t, 7, cli.ExitCode(&cli.ExitError{Code: 7}, &buf))
}

func TestBatchChildrenShareStderr(t *testing.T) {
	requireShell(t)
	script := `echo "err $1" >&2; echo "$1"`
	out, errOut, err := execute(t, "1\n2\n3\n4\n5\n6\n7\n8\n", "batch", "-p", "8", "--", "sh", "-c", script, "sh")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n4\n5\n6\n7\n8\n", out)
	for i := 1; i <= 8; i++ {
		assert.Contains(t, errOut, "err "+string(rune('0'+i))+"\n")
	}
}

func TestLogBackends(t *testing.T) {
	requireShell(t)
	for _, backend := range []string{"zerolog", "slog", "logrus", "zap", "apex"} {
		t.Run(backend, func(t *testing.T) {
			_, errOut, err := execute(t, "", "--log-backend", backend, "run", "--name", "quick", "--", "sh", "-c", "true")
			require.NoError(t, err)
			assert.Contains(t, errOut, "0:00:00")
			assert.Contains(t, errOut, "quick")
		})
	}

	_, _, err := execute(t, "", "--log-backend", "glog", "run", "--", "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log backend")
}

func TestBatchDedupeReportsCacheEventsWhenDebugging(t *testing.T) {
	requireShell(t)
	_, errOut, err := execute(t, "x\nx\n", "--debug", "batch", "-p", "2", "--dedupe", "--", "echo")
	require.NoError(t, err)
	assert.Contains(t, errOut, "memo.miss")

	_, errOut, err = execute(t, "x\nx\n", "batch", "-p", "2", "--dedupe", "--", "echo")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "memo.miss")
}
