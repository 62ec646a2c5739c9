package docs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/sourcedocs/pkg/cache"
	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/markup"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/store"
)

var docsTracer = otel.Tracer("sourcedocs/docs")

// Options configures site generation
type Options struct {
	Layout    Layout
	Format    Format
	MinAccess entity.AccessLevel
	Title     string
	// Workers bounds concurrent page rendering. Zero means GOMAXPROCS.
	Workers int
}

// PageCache stores rendered entity pages. Get returns cache.ErrCacheMiss
// for unknown keys.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Page is one rendered output file
type Page struct {
	Path        string
	Title       string
	Kind        entity.Kind
	ContentType string
	Content     []byte
}

// Site is the complete output of one generation
type Site struct {
	Layout      Layout
	Format      Format
	Index       *Page
	Pages       []*Page
	Entries     []Entry
	GeneratedAt time.Time

	byPath map[string]*Page
}

// Page looks up a page by its path relative to the site root
func (s *Site) Page(path string) (*Page, bool) {
	p, ok := s.byPath[path]
	return p, ok
}

// All returns the index followed by the entity pages
func (s *Site) All() []*Page {
	out := make([]*Page, 0, len(s.Pages)+1)
	if s.Index != nil {
		out = append(out, s.Index)
	}
	return append(out, s.Pages...)
}

// Size returns the total content size in bytes
func (s *Site) Size() int {
	total := 0
	for _, p := range s.All() {
		total += len(p.Content)
	}
	return total
}

// Generator renders a merged forest into a Site
type Generator struct {
	opts    Options
	cache   PageCache
	html    *HTMLConverter
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewGenerator creates a generator. pageCache and metrics may be nil.
func NewGenerator(opts Options, pageCache PageCache, logger *observability.Logger, metrics *observability.Metrics) *Generator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stderr)
	}
	return &Generator{
		opts:    opts,
		cache:   pageCache,
		html:    NewHTMLConverter(),
		logger:  logger,
		metrics: metrics,
	}
}

// Options returns the generator's options
func (g *Generator) Options() Options {
	return g.opts
}

// Renderer returns a renderer for forest configured like the generator
func (g *Generator) Renderer(forest *store.Forest) *Renderer {
	return &Renderer{
		Layout:    g.opts.Layout,
		Format:    g.opts.Format,
		MinAccess: g.opts.MinAccess,
		Forest:    forest,
		Title:     g.opts.Title,
	}
}

// Generate renders the index and the entity pages of forest. Entity pages
// render concurrently; each render owns its links so pages never share
// reference definitions.
func (g *Generator) Generate(ctx context.Context, forest *store.Forest) (*Site, error) {
	ctx, span := docsTracer.Start(ctx, "docs.generate")
	defer span.End()
	start := time.Now()

	entities := forest.VisibleIndex(g.opts.MinAccess)
	r := g.Renderer(forest)
	if r.Layout == MultiPage {
		r.paths = assignPaths(entities, r.Format)
	}

	site := &Site{
		Layout:      r.Layout,
		Format:      r.Format,
		Entries:     r.Entries(entities),
		GeneratedAt: time.Now().UTC(),
		byPath:      make(map[string]*Page),
	}

	var err error
	switch r.Layout {
	case SinglePage:
		doc := append(markup.NonIndentedCollection{}, r.IndexNode(entities)...)
		for _, e := range entities {
			doc = append(doc, markup.HorizontalRule(), r.EntityNode(e))
		}
		site.Index, err = g.encode(IndexPath(r.Format), g.opts.Title, entity.Kind{}, doc)
	case MultiPage:
		site.Index, err = g.encode(IndexPath(r.Format), g.opts.Title, entity.Kind{}, r.IndexNode(entities))
		if err == nil {
			site.Pages, err = g.renderPages(ctx, r, entities)
		}
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownLayout, r.Layout)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate site")
		return nil, err
	}

	for _, p := range site.All() {
		site.byPath[p.Path] = p
	}

	if g.metrics != nil {
		g.metrics.PagesRenderedTotal.WithLabelValues(r.Layout.String(), r.Format.String()).Add(float64(len(site.All())))
		g.metrics.RenderDuration.WithLabelValues(r.Layout.String()).Observe(time.Since(start).Seconds())
	}
	span.SetAttributes(
		attribute.String("layout", r.Layout.String()),
		attribute.String("format", r.Format.String()),
		attribute.Int("entities", len(entities)),
		attribute.Int("pages", len(site.All())),
	)
	span.SetStatus(codes.Ok, fmt.Sprintf("rendered %d pages", len(site.All())))
	return site, nil
}

func (g *Generator) renderPages(ctx context.Context, r *Renderer, entities []*entity.Entity) ([]*Page, error) {
	pages := make([]*Page, len(entities))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)
	for i, e := range entities {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			page, err := g.entityPage(egCtx, r, e)
			if err != nil {
				return fmt.Errorf("failed to render %s: %w", e.Title, err)
			}
			pages[i] = page
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (g *Generator) entityPage(ctx context.Context, r *Renderer, e *entity.Entity) (*Page, error) {
	path := r.LinkPath(e)
	key := pageKey(r, e, path)

	if g.cache != nil {
		content, err := g.cache.Get(ctx, key)
		switch {
		case err == nil:
			g.cacheResult(true)
			return &Page{Path: path, Title: e.Title, Kind: e.Kind, ContentType: r.Format.ContentType(), Content: content}, nil
		case errors.Is(err, cache.ErrCacheMiss):
			g.cacheResult(false)
		default:
			g.logger.WithError(err).WithField("key", key).Warn("page cache lookup failed")
		}
	}

	page, err := g.encode(path, e.Title, e.Kind, r.EntityNode(e))
	if err != nil {
		return nil, err
	}
	if g.cache != nil {
		if err := g.cache.Set(ctx, key, page.Content); err != nil {
			g.logger.WithError(err).WithField("key", key).Warn("page cache store failed")
		}
	}
	return page, nil
}

func (g *Generator) cacheResult(hit bool) {
	if g.metrics == nil {
		return
	}
	if hit {
		g.metrics.CacheHitsTotal.WithLabelValues("page").Inc()
	} else {
		g.metrics.CacheMissesTotal.WithLabelValues("page").Inc()
	}
}

// Encode renders node in the generator's format
func (g *Generator) Encode(node markup.Node) ([]byte, error) {
	content := []byte(markup.Finalize(node))
	if g.opts.Format != HTML {
		return content, nil
	}
	return g.html.Convert(content)
}

func (g *Generator) encode(path, title string, kind entity.Kind, node markup.Node) (*Page, error) {
	content, err := g.Encode(node)
	if err != nil {
		return nil, err
	}
	return &Page{
		Path:        path,
		Title:       title,
		Kind:        kind,
		ContentType: g.opts.Format.ContentType(),
		Content:     content,
	}, nil
}

// pageKey identifies a rendered entity page. Attached extensions take part
// because they are rendered but are not covered by the entity hash.
func pageKey(r *Renderer, e *entity.Entity, path string) string {
	d := xxhash.New()
	fmt.Fprintf(d, "%s|%s|%s|%s|%d", r.Layout, r.Format, r.MinAccess, path, e.Hash())
	if r.Forest != nil {
		for _, ext := range r.Forest.ExtensionsOf(e) {
			fmt.Fprintf(d, "|%d", ext.Hash())
		}
	}
	return "page:" + strconv.FormatUint(d.Sum64(), 16)
}

// assignPaths gives every entity a distinct page path. Titles that slug to
// the same path get a numeric suffix in index order.
func assignPaths(entities []*entity.Entity, f Format) map[*entity.Entity]string {
	paths := make(map[*entity.Entity]string, len(entities))
	used := make(map[string]int, len(entities))
	for _, e := range entities {
		base := PagePath(e, f)
		path := base
		if n := used[base]; n > 0 {
			path = strings.TrimSuffix(base, f.Extension()) + "-" + strconv.Itoa(n+1) + f.Extension()
		}
		used[base]++
		paths[e] = path
	}
	return paths
}
