package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stoker/pkg/target"
)

func TestShell_Execute(t *testing.T) {
	t.Run("Streams Output And Returns Zero", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		sh := NewShell(WithOutput(&stdout, &stderr))

		code, err := sh.Execute(context.Background(), target.Step{Run: "echo hello"})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "hello\n", stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("Non-Zero Exit Is Not An Error", func(t *testing.T) {
		sh := NewShell(WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))

		code, err := sh.Execute(context.Background(), target.Step{Run: "exit 3"})
		require.NoError(t, err)
		assert.Equal(t, 3, code)
	})

	t.Run("Applies Step Directory Override", func(t *testing.T) {
		root := t.TempDir()
		sub := filepath.Join(root, "target", "deploy")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		var stdout bytes.Buffer
		sh := NewShell(WithRoot(root), WithOutput(&stdout, &bytes.Buffer{}))

		code, err := sh.Execute(context.Background(), target.Step{Run: "pwd", Dir: "target/deploy"})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Contains(t, strings.TrimSpace(stdout.String()), filepath.Join("target", "deploy"))
	})

	t.Run("Passes Configured Environment", func(t *testing.T) {
		var stdout bytes.Buffer
		sh := NewShell(
			WithEnv(map[string]string{"STOKER_MSG": "fired-up"}),
			WithOutput(&stdout, &bytes.Buffer{}),
		)

		code, err := sh.Execute(context.Background(), target.Step{Run: "echo $STOKER_MSG"})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "fired-up\n", stdout.String())
	})

	t.Run("Missing Working Directory Is A LaunchError", func(t *testing.T) {
		sh := NewShell(WithRoot(filepath.Join(t.TempDir(), "nope")))

		_, err := sh.Execute(context.Background(), target.Step{Run: "true"})
		var launch *LaunchError
		require.True(t, errors.As(err, &launch))
		assert.Equal(t, "true", launch.Command)
	})

	t.Run("Cancellation Terminates The Subprocess", func(t *testing.T) {
		sh := NewShell(
			WithOutput(&bytes.Buffer{}, &bytes.Buffer{}),
			WithGracePeriod(time.Second),
		)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		_, err := sh.Execute(ctx, target.Step{Run: "sleep 30"})
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 5*time.Second, "subprocess must be reaped promptly")
	})
}
