package vsh

import "context"

// Fetcher retrieves the body of a URL for the curl command.
type Fetcher interface {
	// Fetch returns the response body. A response other than 200 OK fails
	// with ErrConnectionFailed.
	Fetch(ctx context.Context, url string) (string, error)
}
