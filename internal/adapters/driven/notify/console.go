// Package notify surfaces run outcomes on the terminal.
package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
)

// Ensure Console implements the interface.
var _ driven.Notifier = (*Console)(nil)

// Console writes run notifications to a writer, one line per message.
type Console struct {
	out io.Writer
}

// NewConsole creates a notifier writing to stderr.
func NewConsole() *Console {
	return &Console{out: os.Stderr}
}

// NewConsoleWithWriter creates a notifier on an explicit writer.
func NewConsoleWithWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify emits a message at the given level.
func (c *Console) Notify(level domain.NotifyLevel, message string) {
	fmt.Fprintf(c.out, "%s %s\n", prefix(level), message)
}

// prefix maps a level to its terminal marker.
func prefix(level domain.NotifyLevel) string {
	switch level {
	case domain.NotifySuccess:
		return "✓"
	case domain.NotifyWarning:
		return "!"
	case domain.NotifyError:
		return "✗"
	default:
		return "·"
	}
}
