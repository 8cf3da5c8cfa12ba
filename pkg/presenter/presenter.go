// Package presenter provides consistent user-facing CLI output: success,
// warning, error, and informational messages with color support and a
// quiet mode for scripting.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Presenter writes user-facing messages
type Presenter struct {
	out   io.Writer
	errw  io.Writer
	quiet bool
}

// New creates a presenter writing to stdout/stderr with color detection
// from the environment (NO_COLOR and AGENTPAD_COLOR)
func New() *Presenter {
	configureColor()
	return &Presenter{out: os.Stdout, errw: os.Stderr}
}

// NewWithWriters creates a presenter with custom output streams
func NewWithWriters(out, errw io.Writer) *Presenter {
	return &Presenter{out: out, errw: errw}
}

func configureColor() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		return
	}
	switch os.Getenv("AGENTPAD_COLOR") {
	case "always", "force":
		color.NoColor = false
	case "never", "off":
		color.NoColor = true
	}
}

// Error writes an error with optional context to the error stream.
// Errors print even in quiet mode.
func (p *Presenter) Error(err error, context string) {
	if err == nil {
		return
	}
	c := color.New(color.FgRed, color.Bold)
	if context != "" {
		c.Fprintf(p.errw, "[ERROR] %s: %v\n", context, err)
	} else {
		c.Fprintf(p.errw, "[ERROR] %v\n", err)
	}
}

// Success writes a success message
func (p *Presenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.out, "✓ %s\n", message)
}

// Warning writes a warning message
func (p *Presenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.out, "⚠ %s\n", message)
}

// Info writes a plain informational message
func (p *Presenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.out, message)
}

// Section writes an underlined section header
func (p *Presenter) Section(title string) {
	if p.quiet {
		return
	}
	c := color.New(color.Bold)
	c.Fprintf(p.out, "%s\n", title)
	c.Fprintf(p.out, "%s\n", strings.Repeat("-", len(title)))
}

// SetQuiet toggles quiet mode
func (p *Presenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

var defaultPresenter = New()

// Error writes through the default presenter
func Error(err error, context string) {
	defaultPresenter.Error(err, context)
}

// Success writes through the default presenter
func Success(message string) {
	defaultPresenter.Success(message)
}

// Warning writes through the default presenter
func Warning(message string) {
	defaultPresenter.Warning(message)
}

// Info writes through the default presenter
func Info(message string) {
	defaultPresenter.Info(message)
}

// Section writes through the default presenter
func Section(title string) {
	defaultPresenter.Section(title)
}

// SetQuiet toggles quiet mode on the default presenter
func SetQuiet(quiet bool) {
	defaultPresenter.SetQuiet(quiet)
}
