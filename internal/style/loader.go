package style

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/lantern/internal/css"
	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/observability"
)

// FetchFunc retrieves the body of a linked stylesheet by its href.
type FetchFunc func(ctx context.Context, href string) (string, error)

// CollectSheets gathers the document's stylesheets in document order:
// inline <style> elements contribute directly, <link rel="stylesheet">
// elements are fetched with fetch. Linked sheets download concurrently but
// keep their document position. A sheet that fails to fetch is logged and
// skipped; the rest of the document still styles.
func CollectSheets(ctx context.Context, doc *dom.Node, fetch FetchFunc) []css.Stylesheet {
	logger := observability.GetLogger().Named("style")

	type slot struct {
		source string
		ok     bool
	}
	var slots []*slot
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, n := range doc.Descendants() {
		if n.Type() != dom.ElementNode {
			continue
		}
		switch n.Name() {
		case "style":
			slots = append(slots, &slot{source: n.TextContent(), ok: true})
		case "link":
			rel, _ := n.Attr("rel")
			if !strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
				continue
			}
			href, ok := n.Attr("href")
			if !ok || href == "" {
				continue
			}
			s := &slot{}
			slots = append(slots, s)
			g.Go(func() error {
				body, err := fetch(ctx, href)
				if err != nil {
					logger.Warn("skipping stylesheet",
						zap.String("href", href), zap.Error(err))
					return nil
				}
				s.source = body
				s.ok = true
				return nil
			})
		}
	}
	_ = g.Wait() // fetch errors are absorbed per sheet

	sheets := make([]css.Stylesheet, 0, len(slots))
	for _, s := range slots {
		if s.ok {
			sheets = append(sheets, css.ParseStylesheet(s.source))
		}
	}
	return sheets
}
