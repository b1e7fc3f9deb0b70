package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
)

func TestStatusCmd_Use(t *testing.T) {
	assert.Equal(t, "status", statusCmd.Use)
}

func TestStatusCmd_Executes(t *testing.T) {
	status := &mockStatus{
		states: map[string]bool{"minio": true, "nextcloud": false},
		runs: []domain.RunRecord{{
			ID:        "run-1",
			Kind:      domain.RunBackup,
			StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Succeeded: 3,
			Failed:    1,
			Error:     "provider nextcloud: connection refused",
		}},
	}
	swapServices(t, Services{Status: status})

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "minio")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "nextcloud")
	assert.Contains(t, out, "unavailable")
	assert.Contains(t, out, "3 succeeded, 1 failed, 0 skipped")
	assert.Contains(t, out, "connection refused")

	// Providers sort alphabetically for stable output.
	assert.Less(t, strings.Index(out, "minio"), strings.Index(out, "nextcloud"))
}

func TestStatusCmd_Empty(t *testing.T) {
	swapServices(t, Services{Status: &mockStatus{}})

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "(none configured)")
	assert.Contains(t, out, "(no runs recorded)")
}

func TestStatusCmd_Unconfigured(t *testing.T) {
	swapServices(t, Services{})

	_, err := execute(t, "status")

	assert.ErrorContains(t, err, "not configured")
}
