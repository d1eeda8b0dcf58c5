package testutil

import (
	"context"
	"fmt"
	"sync"

	"vsh/internal/vsh"
)

// StubFetcher serves canned bodies by URL. Unknown URLs fail with
// vsh.ErrConnectionFailed, like a non-200 response.
type StubFetcher struct {
	mu        sync.Mutex
	bodies    map[string]string
	Requested []string
}

var _ vsh.Fetcher = (*StubFetcher)(nil)

// NewStubFetcher creates a StubFetcher serving bodies.
func NewStubFetcher(bodies map[string]string) *StubFetcher {
	if bodies == nil {
		bodies = make(map[string]string)
	}
	return &StubFetcher{bodies: bodies}
}

func (f *StubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requested = append(f.Requested, url)

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %v: %w", url, err, vsh.ErrConnectionFailed)
	}
	body, ok := f.bodies[url]
	if !ok {
		return "", fmt.Errorf("%s: 404 Not Found: %w", url, vsh.ErrConnectionFailed)
	}
	return body, nil
}
