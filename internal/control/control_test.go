package control

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/overseer/internal/poller"
	"github.com/aretw0/overseer/internal/testutils"
)

// newDeps wires a fast poller over the fake publisher and tears it down
// with the test.
func newDeps(t *testing.T, fg *testutils.FakeGame) Deps {
	t.Helper()

	p := poller.New(fg, poller.WithInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return Deps{Bridge: fg, Poller: p}
}
