// Package browser drives the rendering pipeline: a Document steps through
// its phases one tick at a time, and a Browser runs those ticks on a
// dedicated renderer goroutine while the presentation side reads the last
// completed document.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/html"
	"github.com/xkilldash9x/lantern/internal/layout"
	"github.com/xkilldash9x/lantern/internal/network"
	"github.com/xkilldash9x/lantern/internal/style"
)

// Phase is a document's position in the pipeline. Phases only advance;
// InvalidateLayout is the single sanctioned step back.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseNavigated
	PhaseLoaded
	PhaseParsed
	PhaseStyled
	PhaseLaidOut
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseNavigated:
		return "navigated"
	case PhaseLoaded:
		return "loaded"
	case PhaseParsed:
		return "parsed"
	case PhaseStyled:
		return "styled"
	case PhaseLaidOut:
		return "laid_out"
	}
	return "unknown"
}

// EncodingError reports a response body the engine cannot treat as UTF-8.
type EncodingError struct {
	Charset string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("document is not utf-8 (detected %q)", e.Charset)
}

// Document carries the artifacts accumulated so far: each phase's
// constructor-like transition fills in exactly what that phase produced.
// A Document is owned by the renderer goroutine until it completes, after
// which the presentation side only reads it.
type Document struct {
	phase    Phase
	location string
	url      *network.URL
	body     string
	root     *dom.Node
	title    string
	box      *layout.Box
	display  *layout.DisplayList
	viewport geom.Viewport
}

// NewDocument returns the empty pre-navigation document.
func NewDocument() *Document {
	return &Document{phase: PhaseNone}
}

// Navigate returns a fresh document pointed at location.
func Navigate(location string) *Document {
	return &Document{phase: PhaseNavigated, location: location}
}

func (d *Document) Phase() Phase                 { return d.phase }
func (d *Document) Location() string             { return d.location }
func (d *Document) URL() *network.URL            { return d.url }
func (d *Document) Root() *dom.Node              { return d.root }
func (d *Document) Title() string                { return d.title }
func (d *Document) Box() *layout.Box             { return d.box }
func (d *Document) Display() *layout.DisplayList { return d.display }
func (d *Document) Viewport() geom.Viewport      { return d.viewport }

// InvalidateLayout steps a laid-out document back to styled, discarding the
// layout tree but preserving parse and style work. On any other phase it is
// the identity. The receiver is never mutated.
func (d *Document) InvalidateLayout() *Document {
	if d.phase != PhaseLaidOut {
		return d
	}
	next := *d
	next.phase = PhaseStyled
	next.box = nil
	next.display = nil
	next.viewport = geom.Viewport{}
	return &next
}

// MemoryUsage estimates the bytes held by the document's artifacts. This is
// instrumentation for the transition logs only.
func (d *Document) MemoryUsage() int {
	total := len(d.location) + len(d.body)
	if d.root != nil {
		for _, n := range append(d.root.Descendants(), d.root) {
			total += nodeBytes(n)
		}
	}
	total += boxBytes(d.box)
	if d.display != nil {
		for _, p := range d.display.Paints {
			total += 64
			if t, ok := p.(layout.Text); ok {
				total += len(t.Content)
			}
		}
	}
	return total
}

func nodeBytes(n *dom.Node) int {
	total := 96 + len(n.Name()) + len(n.Value())
	for _, a := range n.Attrs() {
		total += len(a.Name) + len(a.Value)
	}
	return total
}

func boxBytes(b *layout.Box) int {
	if b == nil {
		return 0
	}
	total := 112
	for _, c := range b.Children() {
		total += boxBytes(c)
	}
	return total
}

// Pipeline holds the collaborators the phase transitions need.
type Pipeline struct {
	fetcher *network.Fetcher
	fonts   layout.FaceSource
	logger  *zap.Logger
}

func NewPipeline(fetcher *network.Fetcher, fonts layout.FaceSource, logger *zap.Logger) *Pipeline {
	return &Pipeline{fetcher: fetcher, fonts: fonts, logger: logger.Named("pipeline")}
}

// Tick advances the document exactly one phase against the viewport. On
// error the document is unchanged. None and LaidOut are fixed points.
func (p *Pipeline) Tick(ctx context.Context, d *Document, vp geom.Viewport) error {
	start := time.Now()
	from := d.phase

	var err error
	switch d.phase {
	case PhaseNone, PhaseLaidOut:
		return nil
	case PhaseNavigated:
		err = p.load(ctx, d)
	case PhaseLoaded:
		err = p.parse(d)
	case PhaseParsed:
		err = p.resolveStyles(ctx, d)
	case PhaseStyled:
		err = p.layOut(d, vp)
	}
	if err != nil {
		return err
	}

	p.logger.Info("phase complete",
		zap.Stringer("from", from),
		zap.Stringer("to", d.phase),
		zap.String("location", d.location),
		zap.Duration("duration", time.Since(start)),
		zap.Int("memory_bytes", d.MemoryUsage()))
	return nil
}

// load fetches the location. Transport failures and non-success statuses
// synthesize an error page and still advance; a body that is not UTF-8
// aborts the tick.
func (p *Pipeline) load(ctx context.Context, d *Document) error {
	u, resp, err := p.fetcher.Fetch(ctx, d.location, nil)
	switch {
	case err != nil:
		p.logger.Warn("load failed", zap.String("location", d.location), zap.Error(err))
		d.body = fmt.Sprintf("<h1>[network error]</h1>%s", htmlEscape(err.Error()))
	case !resp.OK():
		d.body = fmt.Sprintf("<h1>[http %d]</h1>", resp.Status)
	default:
		if encErr := checkUTF8(resp); encErr != nil {
			return encErr
		}
		d.body = string(resp.Body)
	}
	d.url = u
	d.phase = PhaseLoaded
	return nil
}

func checkUTF8(resp *network.Response) error {
	_, name, certain := charset.DetermineEncoding(resp.Body, resp.Headers["content-type"])
	if certain && name != "utf-8" {
		return &EncodingError{Charset: name}
	}
	if !utf8.Valid(resp.Body) {
		return &EncodingError{Charset: name}
	}
	return nil
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func (p *Pipeline) parse(d *Document) error {
	root, err := html.Parse(d.body)
	if err != nil {
		return err
	}
	d.root = root
	d.title = documentTitle(root)
	d.phase = PhaseParsed
	return nil
}

func documentTitle(root *dom.Node) string {
	for _, n := range root.Descendants() {
		if n.Type() == dom.ElementNode && n.Name() == "title" {
			return strings.TrimSpace(n.TextContent())
		}
	}
	return ""
}

func (p *Pipeline) resolveStyles(ctx context.Context, d *Document) error {
	fetch := func(ctx context.Context, href string) (string, error) {
		_, resp, err := p.fetcher.Fetch(ctx, href, d.url)
		if err != nil {
			return "", err
		}
		if !resp.OK() {
			return "", fmt.Errorf("stylesheet %s: http %d", href, resp.Status)
		}
		return string(resp.Body), nil
	}
	sheets := style.CollectSheets(ctx, d.root, fetch)
	style.Resolve(d.root, sheets)
	d.phase = PhaseStyled
	return nil
}

func (p *Pipeline) layOut(d *Document, vp geom.Viewport) error {
	box, display, err := layout.Layout(d.root, vp, p.fonts)
	if err != nil {
		return err
	}
	d.box = box
	d.display = display
	d.viewport = vp
	d.phase = PhaseLaidOut
	return nil
}
