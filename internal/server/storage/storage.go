package storage

import "context"

// Storage aggregates every persistence concern of the server
type Storage interface {
	UserStorage
	TokenStorage
	LinkStorage

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Close releases the underlying connection
	Close() error
}
