package stoker

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stoker/pkg/target"
)

const sampleFile = `
targets:
  - name: check
    steps: ["toolchain check"]
  - name: deploy
    steps:
      - toolchain build --release
      - run: zip -r bundle.zip .
        dir: target/deploy
  - name: recheck
    watch: ["src/**"]
    steps: ["toolchain check"]
`

func writeProject(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "stoker.yaml"), []byte(content), 0o644))
	return root
}

func TestLoad(t *testing.T) {
	root := writeProject(t, sampleFile)

	p, err := Load(root, "")
	require.NoError(t, err)

	t.Run("Lookup Resolves Registered Targets", func(t *testing.T) {
		deploy, err := p.Lookup("deploy")
		require.NoError(t, err)
		assert.Len(t, deploy.Steps, 2)
	})

	t.Run("Unknown Target", func(t *testing.T) {
		_, err := p.Lookup("release")
		var unknown *target.UnknownTargetError
		assert.True(t, errors.As(err, &unknown))
	})

	t.Run("Targets Preserve File Order", func(t *testing.T) {
		var names []string
		for _, tgt := range p.Targets() {
			names = append(names, tgt.Name)
		}
		assert.Equal(t, []string{"check", "deploy", "recheck"}, names)
	})
}

func TestLoad_DuplicateTarget(t *testing.T) {
	root := writeProject(t, `
targets:
  - name: check
    steps: ["true"]
  - name: check
    steps: ["false"]
`)

	_, err := Load(root, "")
	var dup *target.DuplicateTargetError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "check", dup.Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir(), "")
	require.Error(t, err)
}
