package server

import "context"

// Server is a long-running listener that can be stopped gracefully.
type Server interface {
	Start() error
	Stop(ctx context.Context) error
	Address() string
}
