package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/httputil"
	"github.com/platinummonkey/sourcedocs/pkg/store"
)

// currentSite returns the latest site or answers 503
func (s *Server) currentSite(w http.ResponseWriter) *docs.Site {
	site := s.builder.Site()
	if site == nil {
		httputil.WriteServiceUnavailable(w, "documentation has not been built yet")
	}
	return site
}

// getIndex handles GET /docs/
func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	site := s.currentSite(w)
	if site == nil {
		return
	}
	s.writePage(w, r, site, site.Index, false)
}

// getPage handles GET /docs/{kind}/{page}. The page may be named with or
// without its extension; a .html name on a Markdown site is converted.
func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	kind, err := httputil.ParsePathString(r, "kind")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	name, err := httputil.ParsePathString(r, "page")
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	site := s.currentSite(w)
	if site == nil {
		return
	}

	wantHTML := false
	if stem, ok := strings.CutSuffix(name, docs.HTML.Extension()); ok && site.Format != docs.HTML {
		name = stem
		wantHTML = true
	}

	page, ok := site.Page(kind + "/" + name)
	if !ok {
		page, ok = site.Page(kind + "/" + name + site.Format.Extension())
	}
	if !ok {
		httputil.WriteNotFoundError(w, fmt.Sprintf("page %s/%s not found", kind, name))
		return
	}

	s.writePage(w, r, site, page, wantHTML)
}

// writePage writes page in the site format, or as HTML when asked to
// through the name or ?format=html.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, site *docs.Site, page *docs.Page, wantHTML bool) {
	format := site.Format
	if f := httputil.ParseQueryString(r, "format", ""); f != "" {
		parsed, err := docs.ParseFormat(f)
		if err != nil {
			httputil.WriteBadRequest(w, err.Error())
			return
		}
		format = parsed
	}
	if wantHTML {
		format = docs.HTML
	}

	if format == site.Format {
		httputil.WriteContent(w, http.StatusOK, page.ContentType, page.Content)
		return
	}
	if format != docs.HTML {
		httputil.WriteBadRequest(w, fmt.Sprintf("cannot serve a %s site as %s", site.Format, format))
		return
	}

	out, err := s.converter.Convert(page.Content)
	if err != nil {
		s.logger.WithError(err).WithField("path", page.Path).Error("failed to convert page")
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteContent(w, http.StatusOK, docs.HTML.ContentType(), out)
}

// search handles GET /search?q=&kind=&min_access=&limit=
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := store.Query{
		Title:     httputil.ParseQueryString(r, "q", ""),
		MinAccess: s.builder.Options().Docs.MinAccess,
	}

	if label := httputil.ParseQueryString(r, "kind", ""); label != "" {
		kind := entity.ParseKind(label)
		q.Kind = &kind
	}
	if label := httputil.ParseQueryString(r, "min_access", ""); label != "" {
		access, ok := entity.ParseAccessLevel(label)
		if !ok {
			httputil.WriteBadRequest(w, fmt.Sprintf("unknown access level %q", label))
			return
		}
		q.MinAccess = access
	}

	limit, err := httputil.ParseQueryInt(r, "limit", defaultSearchLimit)
	if err != nil || limit < 1 {
		httputil.WriteBadRequest(w, "limit must be a positive integer")
		return
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	site := s.currentSite(w)
	if site == nil {
		return
	}

	matches := s.builder.Store().Forest().Search(q)
	paths := pagePaths(site)

	resp := SearchResponse{
		Query:   q.Title,
		Total:   len(matches),
		Results: make([]SearchResult, 0, min(len(matches), limit)),
	}
	for _, e := range matches {
		if len(resp.Results) == limit {
			break
		}
		resp.Results = append(resp.Results, newSearchResult(e, paths[entryKey(e.Title, e.Kind.TypeLabel())]))
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// listEntries handles GET /entries
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	site := s.currentSite(w)
	if site == nil {
		return
	}
	entries := site.Entries
	if entries == nil {
		entries = []docs.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func entryKey(name, typ string) string {
	return name + "\x00" + typ
}

// pagePaths maps name and type onto the first page path of the site
func pagePaths(site *docs.Site) map[string]string {
	paths := make(map[string]string, len(site.Entries))
	for _, e := range site.Entries {
		key := entryKey(e.Name, e.Type)
		if _, ok := paths[key]; !ok {
			paths[key] = e.Path
		}
	}
	return paths
}
