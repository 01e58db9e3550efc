// Package ui is the presentation side of the engine: a fyne window with a
// location bar, a status label and a scrollable view of the rendered page.
// It sends render requests to the browser and repaints whenever the
// renderer pokes it.
package ui

import (
	"context"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/browser"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/observability"
	"github.com/xkilldash9x/lantern/internal/render"
	"github.com/xkilldash9x/lantern/internal/text"
)

const resizePollInterval = 250 * time.Millisecond

// Shell owns the window. Scrolling stays entirely on this side: the whole
// page is rasterized and placed in a scroll container, so the renderer only
// reruns on navigation or viewport changes.
type Shell struct {
	app     fyne.App
	win     fyne.Window
	browser *browser.Browser
	raster  *render.Rasterizer
	updates <-chan struct{}
	logger  *zap.Logger

	location *widget.Entry
	status   *widget.Label
	page     *canvas.Image
	scroll   *container.Scroll

	lastViewport geom.Viewport
	lastDisplay  any
}

func New(b *browser.Browser, fonts *text.Source, updates <-chan struct{}) *Shell {
	s := &Shell{
		app:     app.New(),
		browser: b,
		raster:  render.NewRasterizer(fonts),
		updates: updates,
		logger:  observability.GetLogger().Named("ui"),
	}
	s.win = s.app.NewWindow("lantern")

	s.location = widget.NewEntry()
	s.location.OnSubmitted = s.navigate
	goBtn := widget.NewButton("Go", func() { s.navigate(s.location.Text) })
	s.status = widget.NewLabel(browser.StatusIdle.String())

	s.page = canvas.NewImageFromImage(nil)
	s.page.FillMode = canvas.ImageFillOriginal
	s.scroll = container.NewScroll(s.page)

	bar := container.NewBorder(nil, nil, nil, container.NewHBox(goBtn, s.status), s.location)
	s.win.SetContent(container.NewBorder(bar, nil, nil, nil, s.scroll))
	s.win.Resize(fyne.NewSize(1024, 768))
	return s
}

// Run shows the window and blocks until it closes. Must be called on the
// main goroutine; fyne owns it.
func (s *Shell) Run(ctx context.Context, initialLocation string) {
	ctx, cancel := context.WithCancel(ctx)
	s.win.SetOnClosed(cancel)

	go s.repaintLoop(ctx)
	go s.resizeLoop(ctx)

	s.location.SetText(initialLocation)
	// First render once the window has geometry.
	go func() {
		time.Sleep(resizePollInterval)
		fyne.Do(func() { s.navigate(initialLocation) })
	}()

	s.win.ShowAndRun()
	cancel()
}

func (s *Shell) navigate(location string) {
	if location == "" {
		return
	}
	vp := s.viewport()
	if !vp.Valid() {
		s.logger.Debug("navigate before window geometry is known", zap.String("location", location))
		return
	}
	s.lastViewport = vp
	s.browser.Requests() <- browser.RenderRequest{Location: location, Viewport: vp}
}

// viewport measures the scroll area in logical points with the canvas's
// device scale.
func (s *Shell) viewport() geom.Viewport {
	size := s.scroll.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return geom.InvalidViewport()
	}
	return geom.NewViewport(
		geom.RectXYWH(0, 0, float64(size.Width), float64(size.Height)),
		float64(s.win.Canvas().Scale()),
	)
}

// repaintLoop waits for renderer pokes and refreshes the widgets.
func (s *Shell) repaintLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.updates:
			fyne.Do(s.refresh)
		}
	}
}

// resizeLoop polls the window geometry; a change invalidates layout by way
// of a viewport-only render request.
func (s *Shell) resizeLoop(ctx context.Context) {
	ticker := time.NewTicker(resizePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fyne.Do(func() {
				vp := s.viewport()
				if !vp.Valid() || vp == s.lastViewport {
					return
				}
				s.lastViewport = vp
				s.browser.Requests() <- browser.RenderRequest{Viewport: vp}
			})
		}
	}
}

// refresh runs on the fyne goroutine.
func (s *Shell) refresh() {
	s.status.SetText(s.browser.Status().String())

	doc := s.browser.Completed()
	if doc == nil || doc.Phase() != browser.PhaseLaidOut {
		return
	}
	if doc.Display() == s.lastDisplay {
		return // nothing new to rasterize
	}

	vp := doc.Viewport()
	height := render.ContentHeight(doc.Display())
	if h := vp.Rect.Height(); height < h {
		height = h
	}
	img, err := s.raster.Page(doc.Display(), vp, height)
	if err != nil {
		s.logger.Error("rasterize failed", zap.Error(err))
		return
	}
	s.lastDisplay = doc.Display()

	s.page.Image = img
	s.page.SetMinSize(fyne.NewSize(float32(vp.Rect.Width()), float32(height)))
	s.page.Refresh()
	s.scroll.Refresh()

	if title := doc.Title(); title != "" {
		s.win.SetTitle(title + " - lantern")
	} else {
		s.win.SetTitle("lantern")
	}
}
