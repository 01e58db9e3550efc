package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/config"
)

func TestSnapshotWritesPNG(t *testing.T) {
	cfg := config.NewDefaultConfig()
	dir := t.TempDir()
	out := filepath.Join(dir, "page.png")
	cfg.SetSessionConfig(config.SessionConfig{
		URL:      "data:text/html,<h1>snapshot</h1><p>body text</p>",
		Snapshot: out,
	})

	require.NoError(t, snapshot(context.Background(), cfg))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSnapshotUnfetchableURLRendersErrorPage(t *testing.T) {
	cfg := config.NewDefaultConfig()
	out := filepath.Join(t.TempDir(), "err.png")
	// base64 data urls are refused; the fetch failure synthesizes a
	// network-error page, which still renders and snapshots.
	cfg.SetSessionConfig(config.SessionConfig{
		URL:      "data:text/html;base64,AAAA",
		Snapshot: out,
	})

	require.NoError(t, snapshot(context.Background(), cfg))
	_, err := os.Stat(out)
	assert.NoError(t, err)
}
