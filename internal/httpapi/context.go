package httpapi

import (
	"context"
)

// serverBaseCtx is the process-level context handlers derive work from.
// Canceling it on shutdown aborts in-flight predict waits (the artifact
// fetch itself keeps running in the cache). Defaults to Background.
var serverBaseCtx = context.Background()

// SetBaseContext installs the process-level base context. Passing nil
// restores Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either parent is done, so a
// predict request stops on client disconnect or on server shutdown,
// whichever comes first. The cancel func must be called when the handler
// returns to release the watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
