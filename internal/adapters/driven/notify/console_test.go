package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

func TestConsole_Notify(t *testing.T) {
	tests := []struct {
		name  string
		level domain.NotifyLevel
		want  string
	}{
		{"success", domain.NotifySuccess, "✓ backed up 3 documents\n"},
		{"warning", domain.NotifyWarning, "! backed up 3 documents\n"},
		{"error", domain.NotifyError, "✗ backed up 3 documents\n"},
		{"info", domain.NotifyInfo, "· backed up 3 documents\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := NewConsoleWithWriter(&buf)

			c.Notify(tt.level, "backed up 3 documents")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}
