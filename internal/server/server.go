package server

import "context"

// Server is a long-running listener driven by the fx lifecycle. Start must
// return once the server accepts connections; Stop drains in-flight work
// until ctx expires.
type Server interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Addr() string
}
