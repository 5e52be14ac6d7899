package actionz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultMaxBodyBytes caps how much of a response body the HTTP fetcher reads.
const DefaultMaxBodyBytes = 4 << 20

// Response is a parsed JSON answer to a lookup.
type Response struct {
	// Body is the decoded JSON document: map[string]any, []any, string,
	// float64, bool or nil.
	Body any `json:"body"`

	// Target is the URL that was requested.
	Target string `json:"target"`

	// StatusCode is the HTTP status, zero if no response arrived.
	StatusCode int `json:"status_code"`

	raw []byte
}

// NewResponse builds a Response from a raw JSON body.
func NewResponse(target string, statusCode int, body []byte) (Response, error) {
	r := Response{Target: target, StatusCode: statusCode}
	if !gjson.ValidBytes(body) {
		return r, ErrInvalidJSON
	}
	r.raw = body
	r.Body = gjson.ParseBytes(body).Value()
	return r, nil
}

// Raw returns the undecoded body.
func (r Response) Raw() []byte {
	return r.raw
}

// Message returns the body's top-level "message" field when the body is an
// object and the field is a string.
func (r Response) Message() (string, bool) {
	if len(r.raw) == 0 {
		return "", false
	}
	m := gjson.GetBytes(r.raw, "message")
	if m.Type != gjson.String {
		return "", false
	}
	return m.Str, true
}

// IsLogicalError reports whether a successfully transported response is
// nevertheless an error by convention: its message mentions "error".
func (r Response) IsLogicalError() bool {
	msg, ok := r.Message()
	return ok && strings.Contains(msg, "error")
}

// Fetcher performs a single GET. It never fails the caller: transport
// problems come back as an error Result so one failed lookup cannot break
// the chain that issued it.
type Fetcher interface {
	Get(ctx context.Context, target string) Result[Response]
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, target string) Result[Response]

// Get implements Fetcher.
func (f FetcherFunc) Get(ctx context.Context, target string) Result[Response] {
	return f(ctx, target)
}

// HTTPFetcher is the default Fetcher, backed by an *http.Client.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type HTTPFetcher struct {
	client  *http.Client
	clock   Clock
	maxBody int64
	name    string
}

// NewHTTPFetcher creates a fetcher. A nil client means http.DefaultClient.
// No timeout is imposed beyond what the client and the context carry.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{
		client:  client,
		clock:   RealClock,
		maxBody: DefaultMaxBodyBytes,
		name:    "http-get",
	}
}

// WithClock sets the clock used to time requests.
func (f *HTTPFetcher) WithClock(clock Clock) *HTTPFetcher {
	if clock != nil {
		f.clock = clock
	}
	return f
}

// WithMaxBody sets the body size limit. Larger bodies fail as invalid JSON.
func (f *HTTPFetcher) WithMaxBody(n int64) *HTTPFetcher {
	if n > 0 {
		f.maxBody = n
	}
	return f
}

// Get issues a GET for target and decodes the JSON answer. Network errors,
// non-2xx statuses and undecodable bodies all return an error Result whose
// item is the partial Response.
func (f *HTTPFetcher) Get(ctx context.Context, target string) Result[Response] {
	start := f.clock.Now()
	partial := Response{Target: target}

	fail := func(err error) Result[Response] {
		return NewError(partial, err, f.name).
			WithMetadata(MetadataTarget, target).
			WithMetadata(MetadataDuration, f.clock.Now().Sub(start)).
			WithMetadata(MetadataStatus, partial.StatusCode)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fail(fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer res.Body.Close()

	partial.StatusCode = res.StatusCode
	if res.StatusCode < 200 || res.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, f.maxBody))
		return fail(&HTTPStatusError{Code: res.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, f.maxBody))
	if err != nil {
		return fail(fmt.Errorf("reading body: %w", err))
	}

	resp, err := NewResponse(target, res.StatusCode, body)
	if err != nil {
		return fail(err)
	}

	return NewSuccess(resp).
		WithMetadata(MetadataTarget, target).
		WithMetadata(MetadataDuration, f.clock.Now().Sub(start)).
		WithMetadata(MetadataStatus, res.StatusCode)
}
