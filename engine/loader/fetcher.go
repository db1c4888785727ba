package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-gltf/engine/gltf"
)

// ProgressFunc receives byte progress of a fetch. total is -1 when unknown.
type ProgressFunc func(loaded, total int64)

// Fetcher retrieves the raw bytes behind a resolved URL.
// Timeouts and retries are the fetcher's responsibility.
type Fetcher interface {
	// Fetch retrieves url.
	//
	// Parameters:
	//   - ctx: cancels the request
	//   - url: a resolved URL or file path
	//   - header: extra request headers, may be nil
	//   - onProgress: optional progress callback
	//
	// Returns:
	//   - []byte: the content
	//   - error: error if the resource cannot be retrieved
	Fetch(ctx context.Context, url string, header http.Header, onProgress ProgressFunc) ([]byte, error)
}

// defaultFetcher serves data: URIs, http(s) URLs and local files.
type defaultFetcher struct {
	client *http.Client
}

var _ Fetcher = &defaultFetcher{}

// NewFetcher creates the default Fetcher. A nil client uses http.DefaultClient.
//
// Parameters:
//   - client: the HTTP client for network URLs
//
// Returns:
//   - Fetcher: a fetcher for data:, http(s):, file: URLs and plain paths
func NewFetcher(client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &defaultFetcher{client: client}
}

func (f *defaultFetcher) Fetch(ctx context.Context, url string, header http.Header, onProgress ProgressFunc) ([]byte, error) {
	switch {
	case gltf.IsDataURI(url):
		data, _, err := gltf.DecodeDataURI(url)
		if err != nil {
			return nil, err
		}
		report(onProgress, int64(len(data)), int64(len(data)))
		return data, nil
	case gltf.IsBlobURI(url):
		return nil, ErrBlobUnsupported
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return f.fetchHTTP(ctx, url, header, onProgress)
	default:
		data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
		if err != nil {
			return nil, err
		}
		report(onProgress, int64(len(data)), int64(len(data)))
		return data, nil
	}
}

func (f *defaultFetcher) fetchHTTP(ctx context.Context, url string, header http.Header, onProgress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %s", url, resp.Status)
	}

	var body io.Reader = resp.Body
	if onProgress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, onProgress: onProgress}
	}
	return io.ReadAll(body)
}

// progressReader reports cumulative bytes read.
type progressReader struct {
	r          io.Reader
	loaded     int64
	total      int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.onProgress(p.loaded, p.total)
	}
	return n, err
}

func report(onProgress ProgressFunc, loaded, total int64) {
	if onProgress != nil {
		onProgress(loaded, total)
	}
}
