package web

import "context"

// Server is the preview server lifecycle as seen by the app.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

type NoopServer struct{}

func (n *NoopServer) Start(ctx context.Context) error { return nil }
func (n *NoopServer) Stop() error                    { return nil }
