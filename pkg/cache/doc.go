// Package cache stores rendered documentation pages keyed by content hash.
//
// Memory is a bounded, expiring LRU for a single process. Redis shares
// pages between processes. Tiered stacks the two so reads hit memory first.
// Every tier returns ErrCacheMiss for absent keys, which callers treat as
// "render it".
package cache
