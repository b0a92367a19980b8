// Package tui renders stoker's own status lines. Step output is passed
// through untouched; only the framing around it is styled.
package tui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Printer writes colored status lines, degrading to plain text when the
// destination is not a terminal. Writes are serialized so lines from the
// run goroutine and the watch loop never interleave.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	profile termenv.Profile
}

// NewPrinter creates a printer for the given stream.
func NewPrinter(out io.Writer) *Printer {
	profile := termenv.Ascii
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &Printer{out: out, profile: profile}
}

// Stdout returns a printer bound to standard output.
func Stdout() *Printer {
	return NewPrinter(os.Stdout)
}

// Step announces a step about to run.
func (p *Printer) Step(targetName string, index, total int, command string) {
	prefix := p.profile.String(fmt.Sprintf("[%s %d/%d]", targetName, index, total)).
		Foreground(p.profile.Color("6")).
		Bold()
	p.printf("%s %s\n", prefix, command)
}

// Success prints a completion marker for a finished run.
func (p *Printer) Success(targetName string) {
	mark := p.profile.String("ok").Foreground(p.profile.Color("2")).Bold()
	p.printf("%s %s\n", mark, targetName)
}

// Failure reports which step failed and with what exit code.
func (p *Printer) Failure(targetName string, stepIndex, exitCode int) {
	mark := p.profile.String("FAIL").Foreground(p.profile.Color("1")).Bold()
	p.printf("%s %s: step %d exited with code %d\n", mark, targetName, stepIndex, exitCode)
}

// Watching prints the idle marker of a watch session.
func (p *Printer) Watching(targetName string, patterns []string) {
	mark := p.profile.String("watch").Foreground(p.profile.Color("4")).Bold()
	p.printf("%s %s: waiting for changes in %v\n", mark, targetName, patterns)
}

// Change announces a detected change that triggers a rerun.
func (p *Printer) Change(path string, count int) {
	mark := p.profile.String("change").Foreground(p.profile.Color("3")).Bold()
	if count > 1 {
		p.printf("%s %s (+%d more)\n", mark, path, count-1)
		return
	}
	p.printf("%s %s\n", mark, path)
}

// Info prints an unstyled session message.
func (p *Printer) Info(format string, args ...any) {
	p.printf(">>> %s\n", fmt.Sprintf(format, args...))
}

func (p *Printer) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}
