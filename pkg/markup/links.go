package markup

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Links is an ordered set of link targets in first-reference order
type Links []string

// Add returns l with url appended unless it is already present
func (l Links) Add(url string) Links {
	if url == "" || l.Contains(url) {
		return l
	}
	return append(l, url)
}

// Merge returns the union of l and other, keeping l's order first
func (l Links) Merge(other Links) Links {
	for _, url := range other {
		l = l.Add(url)
	}
	return l
}

// Contains reports whether url is in the set
func (l Links) Contains(url string) bool {
	for _, u := range l {
		if u == url {
			return true
		}
	}
	return false
}

// RefID returns the reference label used for url: the decimal form of its
// 64-bit hash. Equal targets always share a label.
func RefID(url string) string {
	return strconv.FormatUint(xxhash.Sum64String(url), 10)
}
