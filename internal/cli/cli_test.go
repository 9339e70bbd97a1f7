package cli

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoclaw-ai/stream/internal/config"
	"github.com/neoclaw-ai/stream/internal/stream"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"config", "demo", "repl", "schedule", "stress", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestFirstRunWritesDefaultConfig(t *testing.T) {
	dir := createTestHome(t)

	out, _, err := execute(t, "", "demo")
	require.NoError(t, err)
	assert.Contains(t, out, `greet tag=x -> "echoed-A"`)

	raw, err := os.ReadFile((&config.Config{HomeDir: dir}).ConfigPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[schedule]")
}

func TestRootDefaultsToDemo(t *testing.T) {
	createTestHome(t)

	out, _, err := execute(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, `button stops at "2" -> "2"`)
}

func TestConfigPrintsMergedConfig(t *testing.T) {
	dir := createTestHome(t)
	writeConfig(t, dir, "[stress]\nworkers = 3\n")

	out, _, err := execute(t, "", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "workers = 3")
	assert.Contains(t, out, "[log]")
}

func TestConfigDoesNotBootstrap(t *testing.T) {
	dir := createTestHome(t)

	_, _, err := execute(t, "", "config")
	require.NoError(t, err)
	_, statErr := os.Stat((&config.Config{HomeDir: dir}).ConfigPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvalidConfigFails(t *testing.T) {
	dir := createTestHome(t)
	writeConfig(t, dir, "[log]\nformat = \"xml\"\n")

	_, _, err := execute(t, "", "demo")
	require.ErrorContains(t, err, "log: invalid format")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "stream dev (unknown) "+runtime.Version()+"\n", out)

	_, _, err = execute(t, "", "version", "extra")
	require.Error(t, err)
}

func TestDebugFlagTracesDispatch(t *testing.T) {
	dir := createTestHome(t)
	writeConfig(t, dir, "[log]\nformat = \"text\"\n")

	_, errOut, err := execute(t, "", "--debug", "demo")
	require.NoError(t, err)
	assert.Contains(t, errOut, "stream notify")
	assert.Contains(t, errOut, "dispatch_id=")
}

func TestREPLSession(t *testing.T) {
	dir := createTestHome(t)
	writeConfig(t, dir, "[repl]\nhistory_file = \"\"\n")

	script := strings.Join([]string{
		`listen a greeter x "hi {name}"`,
		`call greeter x bob`,
		`bogus`,
		`list`,
		`exit`,
		`call greeter x never`,
	}, "\n")
	out, _, err := execute(t, script, "repl")
	require.NoError(t, err)

	assert.Contains(t, out, "Interactive mode.")
	assert.Contains(t, out, `-> "hi bob"`)
	assert.Contains(t, out, `error: unknown command "bogus"`)
	assert.Contains(t, out, "greeter: a(tag=x)")
	assert.NotContains(t, out, "never")
}

func TestREPLStopsAtEOF(t *testing.T) {
	createTestHome(t)

	out, _, err := execute(t, "help\n", "repl")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
}

func TestScheduleStopsAfterCount(t *testing.T) {
	createTestHome(t)

	out, _, err := execute(t, "", "schedule", "--spec", "@every 1s", "--tag", "clock", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "tick 1 at ")
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	createTestHome(t)

	_, _, err := execute(t, "", "schedule", "--spec", "never", "--count", "1")
	require.ErrorContains(t, err, "parse schedule")
}

func TestStressCommand(t *testing.T) {
	createTestHome(t)

	out, _, err := execute(t, "", "stress", "--workers", "4", "--calls", "50", "--listeners", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "stress: 200 calls across 4 workers")
}

func TestStressValidatesFlags(t *testing.T) {
	createTestHome(t)

	_, _, err := execute(t, "", "stress", "--workers", "0")
	require.ErrorContains(t, err, "workers must be > 0")
}

func TestRunStressWithoutListeners(t *testing.T) {
	r := stream.NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := runStress(ctx, r, 2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(20), res.calls)
	assert.Zero(t, res.churn)
	assert.Empty(t, r.Channels())
}

func TestRunStressLeavesRegistryClean(t *testing.T) {
	r := stream.NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := runStress(ctx, r, 3, 100, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.calls)
	assert.Empty(t, r.Channels())
}

func TestRunStressHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runStress(ctx, stream.NewRegistry(), 2, 10, 1)
	require.ErrorIs(t, err, context.Canceled)
}
