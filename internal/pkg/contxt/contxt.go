package contxt

import (
	"context"
	"time"
)

// NewContext gives fire-and-forget work a bounded lifetime without threading
// cancellation through every publish call site.
func NewContext(timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
