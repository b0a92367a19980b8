package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "stoker.yaml", `
targets:
  - name: deploy
    description: Build a distributable archive
    steps:
      - toolchain build --release
      - run: zip -r bundle.zip .
        dir: target/deploy
  - name: recheck
    watch: ["src/**"]
    debounce: 250ms
    env:
      RUST_BACKTRACE: "1"
    steps:
      - toolchain check
`)

	targets, err := Load(path)
	require.NoError(t, err)
	require.Len(t, targets, 2)

	deploy := targets[0]
	assert.Equal(t, "deploy", deploy.Name)
	assert.Equal(t, "Build a distributable archive", deploy.Description)
	require.Len(t, deploy.Steps, 2)
	assert.Equal(t, "toolchain build --release", deploy.Steps[0].Run)
	assert.Empty(t, deploy.Steps[0].Dir)
	assert.Equal(t, "zip -r bundle.zip .", deploy.Steps[1].Run)
	assert.Equal(t, "target/deploy", deploy.Steps[1].Dir)
	assert.False(t, deploy.IsWatch())

	recheck := targets[1]
	assert.True(t, recheck.IsWatch())
	assert.Equal(t, []string{"src/**"}, recheck.Watch)
	assert.Equal(t, 250*time.Millisecond, recheck.Debounce)
	assert.Equal(t, "1", recheck.Env["RUST_BACKTRACE"])
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "stoker.json", `{
  "targets": [
    {
      "name": "check",
      "steps": ["toolchain check", {"run": "ls", "dir": "src"}]
    }
  ]
}`)

	targets, err := Load(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	require.Len(t, targets[0].Steps, 2)
	assert.Equal(t, "toolchain check", targets[0].Steps[0].Run)
	assert.Equal(t, "src", targets[0].Steps[1].Dir)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("Missing Name", func(t *testing.T) {
		path := writeFile(t, "stoker.yaml", "targets:\n  - steps: [\"true\"]\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name is required")
	})

	t.Run("No Steps", func(t *testing.T) {
		path := writeFile(t, "stoker.yaml", "targets:\n  - name: empty\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one step")
	})

	t.Run("Blank Step Command", func(t *testing.T) {
		path := writeFile(t, "stoker.yaml", "targets:\n  - name: bad\n    steps: [\"  \"]\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command")
	})

	t.Run("Bad Debounce", func(t *testing.T) {
		path := writeFile(t, "stoker.yaml", "targets:\n  - name: w\n    debounce: soon\n    steps: [\"true\"]\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid debounce")
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
