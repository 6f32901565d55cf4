package librarian

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"resty.dev/v3"
)

// RequestIDHeader carries a per-request id so server logs can be matched
// to client debug logs.
const RequestIDHeader = "X-Request-Id"

// DefaultTimeout bounds a single JSON request. Raw transfers are bounded
// by their socket timeout instead.
const DefaultTimeout = 60 * time.Second

// Endpoint is the address of the librarian API.
type Endpoint struct {
	Host string
	Port int
	SSL  bool
}

// BaseURL returns the scheme://host:port prefix for every request.
func (e Endpoint) BaseURL() string {
	scheme := "http"
	if e.SSL {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) configured() bool {
	return e.Host != "" && e.Port > 0
}

// Options configures a Transport.
type Options struct {
	Endpoint Endpoint

	// Timeout bounds each JSON request. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient supplies the underlying round tripper. Optional.
	HTTPClient *http.Client

	// Logger receives per-request debug records. Optional.
	Logger *slog.Logger

	// UserAgent is sent with every request when non-empty.
	UserAgent string
}

// Transport issues requests against one librarian endpoint. It is safe
// for concurrent use and is never mutated after construction.
type Transport struct {
	endpoint Endpoint
	json     *resty.Client
	raw      *resty.Client
	logger   *slog.Logger
}

// NewTransport returns a Transport for opts.Endpoint. A Transport with an
// unconfigured endpoint is valid to construct; every call on it returns
// ErrNotInitialized.
func NewTransport(opts Options) *Transport {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var rt http.RoundTripper
	if opts.HTTPClient != nil {
		rt = opts.HTTPClient.Transport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Separate http.Clients: resty writes the timeout onto the client it
	// wraps, and raw transfers must not carry a whole-request deadline.
	jsonClient := resty.NewWithClient(&http.Client{Transport: rt}).SetTimeout(timeout)
	rawClient := resty.NewWithClient(&http.Client{Transport: rt})
	if opts.UserAgent != "" {
		jsonClient.SetHeader("User-Agent", opts.UserAgent)
		rawClient.SetHeader("User-Agent", opts.UserAgent)
	}

	return &Transport{
		endpoint: opts.Endpoint,
		json:     jsonClient,
		raw:      rawClient,
		logger:   logger,
	}
}

// Endpoint returns the endpoint the transport was built for.
func (t *Transport) Endpoint() Endpoint {
	return t.endpoint
}

// Close releases idle connections held by the transport.
func (t *Transport) Close() error {
	if t == nil {
		return nil
	}
	if err := t.json.Close(); err != nil {
		return err
	}
	return t.raw.Close()
}

// Send issues a JSON request and interprets the response body.
//
// A nil Payload with a nil error is a successful null response. A body
// carrying a truthy error or errors field is returned as a KindAPI error
// regardless of the HTTP status.
func (t *Transport) Send(ctx context.Context, method, path string, query url.Values, body any) (Payload, error) {
	if t == nil || !t.endpoint.configured() {
		return nil, ErrNotInitialized
	}

	reqID := uuid.NewString()
	req := t.json.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "application/json").
		SetHeader(RequestIDHeader, reqID)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s request: %w", method, path, err)
		}
		req.SetHeader("Content-Type", "application/json").SetBody(data)
	}

	start := time.Now()
	resp, err := req.Execute(method, t.url(path, query))
	if err != nil {
		t.logger.Debug("api request failed",
			"method", method, "path", path, "query", redactQuery(query),
			"request_id", reqID, "duration", time.Since(start), "error", err)
		return nil, transportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	t.logger.Debug("api request",
		"method", method, "path", path, "query", redactQuery(query),
		"request_id", reqID, "status", resp.StatusCode(),
		"bytes", len(data), "duration", time.Since(start))

	return interpret(resp.StatusCode(), data)
}

func (t *Transport) url(path string, query url.Values) string {
	u := t.endpoint.BaseURL() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Payload is the body of a successful response. It is nil when the
// server answered with a JSON null.
type Payload []byte

// IsNull reports whether the server returned a null body.
func (p Payload) IsNull() bool {
	return len(p) == 0
}

// Decode unmarshals the payload into v. Decoding a null payload leaves v
// untouched. A payload that does not fit v is a protocol error.
func (p Payload) Decode(v any) error {
	if p.IsNull() {
		return nil
	}
	if err := json.Unmarshal(p, v); err != nil {
		return protocolError(0, err)
	}
	return nil
}

// Get returns the gjson result at path.
func (p Payload) Get(path string) gjson.Result {
	return gjson.GetBytes(p, path)
}

// interpret applies the envelope rules to a complete response body.
func interpret(status int, data []byte) (Payload, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, protocolError(status, fmt.Errorf("invalid JSON body (%d bytes)", len(data)))
	}

	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		return nil, nil
	}
	if root.IsObject() {
		errs := root.Get("errors")
		single := root.Get("error")
		if truthy(errs) || truthy(single) {
			return nil, envelopeError(status, errs, single)
		}
	}
	return Payload(data), nil
}

// truthy follows JavaScript truthiness, which is what the server's own
// clients use to decide whether a response is an error.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

// envelopeError builds the API error. The first element of errors is
// canonical; error is consulted when errors carries no message.
func envelopeError(status int, errs, single gjson.Result) *Error {
	e := &Error{Kind: KindAPI, StatusCode: status}

	if errs.IsArray() {
		if items := errs.Array(); len(items) > 0 {
			e.ID, e.Message = describe(items[0])
		}
	} else if truthy(errs) {
		e.ID, e.Message = describe(errs)
	}
	if e.Message == "" && truthy(single) {
		id, msg := describe(single)
		if e.ID == "" {
			e.ID = id
		}
		e.Message = msg
	}
	if e.Message == "" {
		e.Message = "the API reported an error without a message"
	}
	return e
}

func describe(r gjson.Result) (id, message string) {
	switch {
	case r.IsObject():
		return r.Get("id").String(), r.Get("message").String()
	case r.Type == gjson.String:
		return "", r.Str
	case r.Type == gjson.True:
		return "", ""
	default:
		return "", r.Raw
	}
}

func redactQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	c := make(url.Values, len(q))
	for k, v := range q {
		if k == TokenParam {
			c.Set(k, "REDACTED")
			continue
		}
		c[k] = v
	}
	return c.Encode()
}
