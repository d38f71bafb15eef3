// Package fetcher downloads remote documents and streams delimited files.
package fetcher

import (
	"context"
	"fmt"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body. Callers must close it.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchError reports a response whose status was not 200 OK.
type FetchError struct {
	StatusCode int
	URL        string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher: unexpected status %d from %s", e.StatusCode, e.URL)
}
