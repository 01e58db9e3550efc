package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/browser"
	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/network"
	"github.com/xkilldash9x/lantern/internal/observability"
	"github.com/xkilldash9x/lantern/internal/render"
	"github.com/xkilldash9x/lantern/internal/text"
)

var snapshotOutput string

// snapshotCmd renders a page without opening a window and writes the
// result to a PNG.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [url]",
	Short: "Render a page headlessly and write it to a PNG.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := DefaultLocation
		if len(args) == 1 {
			location = args[0]
		}
		appCfg.SetSessionConfig(config.SessionConfig{URL: location, Snapshot: snapshotOutput})
		return snapshot(cmd.Context(), appCfg)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "page.png", "output file name")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshot(ctx context.Context, cfg config.Interface) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := observability.GetLogger()

	fonts, err := text.NewSource(cfg.Render())
	if err != nil {
		return fmt.Errorf("loading fonts: %w", err)
	}
	fetcher := network.NewFetcher(cfg.Network())
	pipeline := browser.NewPipeline(fetcher, fonts, logger)

	view := cfg.Viewport()
	vp := geom.NewViewport(geom.RectXYWH(0, 0, view.Width, view.Height), view.Scale)

	doc := browser.Navigate(cfg.Session().URL)
	for doc.Phase() != browser.PhaseLaidOut {
		if err := pipeline.Tick(ctx, doc, vp); err != nil {
			return fmt.Errorf("rendering %s: %w", cfg.Session().URL, err)
		}
	}

	height := render.ContentHeight(doc.Display())
	if h := vp.Rect.Height(); height < h {
		height = h
	}
	img, err := render.NewRasterizer(fonts).Page(doc.Display(), vp, height)
	if err != nil {
		return err
	}

	out := cfg.Session().Snapshot
	if !filepath.IsAbs(out) {
		out = filepath.Join(cfg.Render().SnapshotDir, out)
	}
	if err := render.SavePNG(out, img); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	logger.Info("snapshot written", zap.String("path", out), zap.String("url", cfg.Session().URL))
	return nil
}
