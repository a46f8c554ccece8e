// Package cache describes the redirect cache used in front of link storage.
package cache

import (
	"context"
	"errors"
)

// ErrMiss indicates that the code is not cached or the entry has expired
var ErrMiss = errors.New("cache miss")

// Cache maps a short code to its original URL
type Cache interface {
	// Get returns cached URL for the code
	// Returns ErrMiss if nothing is cached
	Get(ctx context.Context, code string) (string, error)

	// Set stores URL for the code
	Set(ctx context.Context, code, url string) error

	// Delete drops the code from cache; deleting a missing code is not an error
	Delete(ctx context.Context, code string) error

	// Close releases cache resources
	Close() error
}

// Noop is a cache that never stores anything
type Noop struct{}

// Get always misses
func (Noop) Get(context.Context, string) (string, error) { return "", ErrMiss }

// Set does nothing
func (Noop) Set(context.Context, string, string) error { return nil }

// Delete does nothing
func (Noop) Delete(context.Context, string) error { return nil }

// Close does nothing
func (Noop) Close() error { return nil }
