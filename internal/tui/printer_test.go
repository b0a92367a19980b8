package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrinter_PlainOutputOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Step("deploy", 2, 3, "zip -r bundle.zip .")
	p.Failure("deploy", 2, 12)
	p.Success("check")
	p.Change("src/main.rs", 3)
	p.Info("watching %s", "recheck")

	out := buf.String()
	assert.Contains(t, out, "[deploy 2/3] zip -r bundle.zip .")
	assert.Contains(t, out, "FAIL deploy: step 2 exited with code 12")
	assert.Contains(t, out, "ok check")
	assert.Contains(t, out, "change src/main.rs (+2 more)")
	assert.Contains(t, out, ">>> watching recheck")
	assert.NotContains(t, out, "\x1b[", "non-terminal output must carry no escape codes")
}
