package request

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// HTTPFetcher implements Fetcher for "http:"/"https:" scheme Spec.URI
// values using the standard library's net/http client. Grounded on the
// teacher's http module's stdlib-based request builtin; kept on stdlib
// rather than a third-party HTTP client because the teacher's own http
// module is itself a thin net/http wrapper — there is no ecosystem HTTP
// client in the retrieval pack worth swapping in over it.
type HTTPFetcher struct {
	Client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: http.DefaultClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, spec *Spec) (*Result, error) {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if len(spec.Body) > 0 {
		body = bytes.NewReader(spec.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, spec.URI, body)
	if err != nil {
		return nil, err
	}
	for k, v := range spec.Headers {
		httpReq.Header.Set(k, v)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	header := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		header[k] = resp.Header.Get(k)
	}
	return &Result{Status: resp.StatusCode, Header: header, Body: data}, nil
}
