package rpcserver

import (
	"context"
	"testing"
)

// testContext returns a context that is canceled when the test ends, standing
// in for t.Context() which requires a newer Go release than this toolchain.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return ctx
}
