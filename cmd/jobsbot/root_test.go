package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestFlagValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"verbose out of range", []string{"--verbose", "2", "check"}, "--verbose"},
		{"negative verbose", []string{"-v", "-1", "check"}, "--verbose"},
		{"update out of range", []string{"--update", "3"}, "--update"},
		{"not a number", []string{"--update", "yes"}, "invalid argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRejectsPositionalArgs(t *testing.T) {
	_, err := execute(t, "extra")
	assert.Error(t, err)
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := fmt.Sprintf(`{
  "keywords": ["golang"],
  "locations": ["remote"],
  "candidate_name": "Ada",
  "candidate_location": "London",
  "candidate_email": "ada@example.com",
  "candidate_phone_number": "123",
  "letter": "Hello",
  "cv_rel_path": %q,
  "targets_rel_path": %q,
  "taboo_rel_path": %q,
  "applied_rel_path": %q
}`, filepath.Join(dir, "cv.pdf"), filepath.Join(dir, "targets.txt"),
		filepath.Join(dir, "taboo.txt"), filepath.Join(dir, "applied.txt"))

	path := filepath.Join(dir, "configs.json")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestCheckPrintsListSizes(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	dir := t.TempDir()
	path := writeConfig(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "targets.txt"),
		[]byte("https://x.test/1\nhttps://x.test/2?ref=a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taboo.txt"),
		[]byte("https://x.test/2\n"), 0o644))

	out, err := execute(t, "--config", path, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "config ok: 1 keywords, 1 locations, driver playwright, storage file")
	assert.Contains(t, out, "targets  2")
	assert.Contains(t, out, "taboo    1")
	assert.Contains(t, out, "applied  0")
	assert.Contains(t, out, "queue    1")
}

func TestCheckMissingConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "none.json"), "check")
	assert.ErrorContains(t, err, "read config")
}

func TestRenderCVRequiresResumePaths(t *testing.T) {
	path := writeConfig(t, t.TempDir())
	_, err := execute(t, "--config", path, "render-cv")
	assert.ErrorContains(t, err, "resume.json_path")
}

const interruptedOutput = "program execution interrupted.\nExiting.\n"

func TestInterruptible(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var out bytes.Buffer
		err := interruptible(ctx, &out, func(ctx context.Context) error { return ctx.Err() })
		assert.NoError(t, err)
		assert.Equal(t, interruptedOutput, out.String())
	})

	t.Run("failure", func(t *testing.T) {
		var out bytes.Buffer
		boom := errors.New("boom")
		err := interruptible(context.Background(), &out, func(context.Context) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, out.String())
	})
}

func TestRootInterruptedExitsCleanly(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	path := writeConfig(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "--config", path, "--update", "0")
	require.NoError(t, err)
	assert.Equal(t, interruptedOutput, out)
}

func TestSuperviseInterruptedExitsCleanly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := executeContext(t, ctx, "supervise", "--interval", "1s")
	require.NoError(t, err)
	assert.Equal(t, interruptedOutput, out)
}

func TestNotifyContextCancelledBySignal(t *testing.T) {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled by SIGINT")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
