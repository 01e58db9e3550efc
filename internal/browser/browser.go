package browser

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/layout"
	"github.com/xkilldash9x/lantern/internal/network"
	"github.com/xkilldash9x/lantern/internal/observability"
)

// RenderStatus is the coarse pipeline position shown to the presentation
// side. It is updated atomically on every phase boundary.
type RenderStatus int32

const (
	StatusIdle RenderStatus = iota
	StatusLoad
	StatusParse
	StatusStyle
	StatusLayout
	StatusDone
)

func (s RenderStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoad:
		return "loading"
	case StatusParse:
		return "parsing"
	case StatusStyle:
		return "styling"
	case StatusLayout:
		return "layout"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// RenderRequest asks the renderer to bring a document to LaidOut under the
// given viewport. An empty Location means "the current document" (a resize
// or an explicit relayout).
type RenderRequest struct {
	Location string
	Viewport geom.Viewport
}

// Options tune a Browser beyond its collaborators.
type Options struct {
	// Timing makes the renderer call Exit(0) as soon as a document
	// reaches LaidOut, for headless timing runs.
	Timing bool
	// Exit replaces os.Exit-style termination in timing mode. Required
	// when Timing is set.
	Exit func(code int)
	// OnUpdate is poked after every phase boundary and after a completed
	// document swap; the presentation side repaints in response.
	OnUpdate func()
}

// Browser owns the renderer side of the two-goroutine split. The
// presentation side sends RenderRequests and reads the completed document;
// the renderer goroutine advances the in-progress document and swaps it in
// when it finishes.
type Browser struct {
	pipeline *Pipeline
	opts     Options
	logger   *zap.Logger

	requests chan RenderRequest
	status   atomic.Int32

	completedMu sync.RWMutex
	completed   *Document

	nextMu sync.RWMutex
	next   *Document
}

func New(fetcher *network.Fetcher, fonts layout.FaceSource, opts Options) *Browser {
	logger := observability.GetLogger().Named("browser")
	if opts.OnUpdate == nil {
		opts.OnUpdate = func() {}
	}
	return &Browser{
		pipeline: NewPipeline(fetcher, fonts, logger),
		opts:     opts,
		logger:   logger,
		requests: make(chan RenderRequest, 16),
	}
}

// Requests is the channel the presentation side sends on. Single producer,
// single consumer.
func (b *Browser) Requests() chan<- RenderRequest { return b.requests }

// Status reads the current pipeline position.
func (b *Browser) Status() RenderStatus {
	return RenderStatus(b.status.Load())
}

// Completed returns the last fully laid-out document, or nil before the
// first one finishes.
func (b *Browser) Completed() *Document {
	b.completedMu.RLock()
	defer b.completedMu.RUnlock()
	return b.completed
}

func (b *Browser) setStatus(s RenderStatus) {
	b.status.Store(int32(s))
	b.opts.OnUpdate()
}

// Run is the renderer loop. It blocks on the request channel, drains any
// backlog keeping only the newest request, and advances the working
// document until it is laid out or fails. It returns when ctx is cancelled
// or the request channel closes.
func (b *Browser) Run(ctx context.Context) {
	for {
		var req RenderRequest
		select {
		case <-ctx.Done():
			return
		case r, ok := <-b.requests:
			if !ok {
				return
			}
			req = r
		}
		// Newer requests supersede older ones without interrupting
		// in-flight work.
	drain:
		for {
			select {
			case r, ok := <-b.requests:
				if !ok {
					return
				}
				req = r
			default:
				break drain
			}
		}

		if !req.Viewport.Valid() {
			b.logger.Debug("skipping request with invalid viewport")
			continue
		}
		b.process(ctx, req)
	}
}

func (b *Browser) process(ctx context.Context, req RenderRequest) {
	doc := b.workingDocument(req)
	if doc == nil || doc.Phase() == PhaseNone {
		return
	}

	for {
		if doc.Phase() == PhaseLaidOut {
			if doc.Viewport() == req.Viewport {
				break
			}
			// Laid out against a stale viewport; redo from styled.
			doc = doc.InvalidateLayout()
			b.setNext(doc)
		}

		b.setStatus(statusFor(doc.Phase()))
		if err := b.pipeline.Tick(ctx, doc, req.Viewport); err != nil {
			b.logger.Error("render failed",
				zap.String("location", doc.Location()),
				zap.Stringer("phase", doc.Phase()),
				zap.Error(err))
			b.setStatus(StatusIdle)
			return
		}
		b.setNext(doc)
	}

	b.completedMu.Lock()
	b.completed = doc
	b.completedMu.Unlock()
	b.setNext(nil)
	b.setStatus(StatusDone)

	if b.opts.Timing {
		b.logger.Info("timing mode: document laid out, exiting")
		b.opts.Exit(0)
	}
}

// workingDocument picks the document this request applies to: a fresh
// navigation when a location is given, the in-progress document when one
// exists, otherwise the completed document stepped back for relayout.
func (b *Browser) workingDocument(req RenderRequest) *Document {
	if req.Location != "" {
		doc := Navigate(req.Location)
		b.setNext(doc)
		return doc
	}
	b.nextMu.RLock()
	next := b.next
	b.nextMu.RUnlock()
	if next != nil {
		return next
	}
	return b.Completed()
}

func (b *Browser) setNext(doc *Document) {
	b.nextMu.Lock()
	b.next = doc
	b.nextMu.Unlock()
}

func statusFor(p Phase) RenderStatus {
	switch p {
	case PhaseNavigated:
		return StatusLoad
	case PhaseLoaded:
		return StatusParse
	case PhaseParsed:
		return StatusStyle
	case PhaseStyled:
		return StatusLayout
	}
	return StatusDone
}
