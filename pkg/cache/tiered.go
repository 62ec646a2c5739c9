package cache

import (
	"context"
	"errors"
)

// Store is the contract shared by every cache tier.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Tiered reads through a fast local tier into a shared remote tier and
// back-fills the local tier on remote hits.
type Tiered struct {
	local  Store
	remote Store
}

// NewTiered combines local and remote. A nil remote makes Tiered behave
// exactly like local.
func NewTiered(local, remote Store) *Tiered {
	return &Tiered{local: local, remote: remote}
}

// Get checks local then remote. Remote failures surface as misses so a
// Redis outage degrades to rendering.
func (t *Tiered) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := t.local.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) || t.remote == nil {
		return nil, err
	}

	value, err = t.remote.Get(ctx, key)
	if err != nil {
		return nil, ErrCacheMiss
	}

	_ = t.local.Set(ctx, key, value)
	return value, nil
}

// Set writes both tiers. The local write always happens; a remote failure
// is returned.
func (t *Tiered) Set(ctx context.Context, key string, value []byte) error {
	if err := t.local.Set(ctx, key, value); err != nil {
		return err
	}
	if t.remote == nil {
		return nil
	}
	return t.remote.Set(ctx, key, value)
}
