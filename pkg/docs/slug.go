package docs

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/platinummonkey/sourcedocs/pkg/entity"
)

var nonWord = regexp.MustCompile(`\W+`)

// AnchorSlug lowercases s and replaces each run of non-word characters with
// a hyphen. Used for same-page anchors and kind folders.
func AnchorSlug(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// FileSlug replaces each run of non-word characters with a hyphen and keeps
// the case of s. Used for page file names.
func FileSlug(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(s, "-"), "-")
}

// KindFolder returns the folder holding pages of kind k, e.g. "global-functions"
func KindFolder(k entity.Kind) string {
	if folder := AnchorSlug(k.DisplayName()); folder != "" {
		return folder
	}
	return "other"
}

// PagePath returns the multi-page path of e relative to the site root.
// Titles without any word character, such as operators, use a hash.
func PagePath(e *entity.Entity, f Format) string {
	slug := FileSlug(e.Title)
	if slug == "" {
		slug = strconv.FormatUint(xxhash.Sum64String(e.Title), 16)
	}
	return KindFolder(e.Kind) + "/" + slug + f.Extension()
}

// IndexPath returns the path of the index page
func IndexPath(f Format) string {
	return "index" + f.Extension()
}
