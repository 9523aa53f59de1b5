package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// maxDownloadBytes caps a single remote image.
const maxDownloadBytes = 32 << 20

// Download is the outcome of fetching one URL. Err is set when the fetch failed.
type Download struct {
	URL         string
	Data        []byte
	ContentType string
	Err         error
}

// DownloadAll fetches urls with at most limit requests in flight. A failed
// download never cancels its siblings. Results keep the order of urls.
func DownloadAll(ctx context.Context, client *http.Client, urls []string, limit int) []Download {
	if limit <= 0 {
		limit = 1
	}
	results := make([]Download, len(urls))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, limit)

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			data, contentType, err := FetchBytes(ctx, client, u)
			results[i] = Download{URL: u, Data: data, ContentType: contentType, Err: err}
		}(i, u)
	}

	wg.Wait()
	return results
}

// FetchBytes GETs a URL and returns its body and content type. Non-2xx is an error.
func FetchBytes(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("failed to download image %s: bad status: %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}
