package api

import (
	"github.com/platinummonkey/sourcedocs/pkg/entity"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// SearchResult is one entity matched by GET /search
type SearchResult struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Access      string `json:"access"`
	Declaration string `json:"declaration,omitempty"`
	Comment     string `json:"comment,omitempty"`
	SourceFile  string `json:"source_file,omitempty"`
	// Path is the page of the entity when it has one in the current site
	Path string `json:"path,omitempty"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Query   string         `json:"query"`
	Total   int            `json:"total"`
	Results []SearchResult `json:"results"`
}

func newSearchResult(e *entity.Entity, path string) SearchResult {
	return SearchResult{
		Name:        e.Title,
		Kind:        e.Kind.String(),
		Access:      e.Access.String(),
		Declaration: e.Declaration(),
		Comment:     e.Comment,
		SourceFile:  e.SourceFile,
		Path:        path,
	}
}
