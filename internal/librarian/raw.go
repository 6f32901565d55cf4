package librarian

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// SocketTimeoutHeader may be set on a RawRequest to bound how long the
// transfer may stall, in milliseconds. Transport consumes it; it is never
// sent to the server.
const SocketTimeoutHeader = "X-Socket-Timeout"

// RawRequest describes an unparsed, streamed request.
type RawRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is streamed to the server as-is. Optional.
	Body io.Reader
}

// RawResponse is a streamed response. Callers must close Body.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Raw forwards req without JSON handling. If the request carries
// SocketTimeoutHeader, a transfer where neither the request body nor the
// response body moves for that long is torn down in both directions and
// fails with a transport error wrapping ErrSocketTimeout.
func (t *Transport) Raw(ctx context.Context, req RawRequest) (*RawResponse, error) {
	if t == nil || !t.endpoint.configured() {
		return nil, ErrNotInitialized
	}

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	timeout := socketTimeout(header)
	header.Del(SocketTimeoutHeader)

	ctx, cancel := context.WithCancelCause(ctx)
	dog := newWatchdog(timeout, func() { cancel(ErrSocketTimeout) })

	reqID := uuid.NewString()
	r := t.raw.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader(RequestIDHeader, reqID)
	for k := range header {
		r.SetHeader(k, header.Get(k))
	}
	if req.Body != nil {
		r.SetBody(dog.reader(req.Body))
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, t.url(req.Path, req.Query))
	if err != nil {
		dog.stop()
		fired := dog.fired()
		cancel(nil)
		t.logger.Debug("raw request failed",
			"method", req.Method, "path", req.Path, "query", redactQuery(req.Query),
			"request_id", reqID, "duration", time.Since(start), "error", err)
		if fired {
			return nil, transportError(ErrSocketTimeout)
		}
		return nil, transportError(err)
	}

	t.logger.Debug("raw request",
		"method", req.Method, "path", req.Path, "query", redactQuery(req.Query),
		"request_id", reqID, "status", resp.StatusCode(), "duration", time.Since(start))

	return &RawResponse{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body: &watchedBody{
			watchedReader: watchedReader{r: resp.Body, dog: dog},
			closer:        resp.Body,
			cancel:        func() { cancel(nil) },
		},
	}, nil
}

func socketTimeout(h http.Header) time.Duration {
	v := h.Get(SocketTimeoutHeader)
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

// watchdog fires once if it is not kicked within d. A zero d never fires.
type watchdog struct {
	d     time.Duration
	timer *time.Timer
	done  atomic.Bool
}

func newWatchdog(d time.Duration, onFire func()) *watchdog {
	w := &watchdog{d: d}
	if d > 0 {
		w.timer = time.AfterFunc(d, func() {
			w.done.Store(true)
			onFire()
		})
	}
	return w
}

func (w *watchdog) kick() {
	if w.timer != nil && !w.done.Load() {
		w.timer.Reset(w.d)
	}
}

func (w *watchdog) stop() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) fired() bool {
	return w.done.Load()
}

func (w *watchdog) reader(r io.Reader) io.Reader {
	return &watchedReader{r: r, dog: w}
}

type watchedReader struct {
	r   io.Reader
	dog *watchdog
}

func (w *watchedReader) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	if n > 0 {
		w.dog.kick()
	}
	if err != nil && !errors.Is(err, io.EOF) && w.dog.fired() {
		err = transportError(ErrSocketTimeout)
	}
	return n, err
}

type watchedBody struct {
	watchedReader
	closer io.Closer
	cancel func()
	once   sync.Once
	err    error
}

func (b *watchedBody) Close() error {
	b.once.Do(func() {
		b.dog.stop()
		b.err = b.closer.Close()
		b.cancel()
	})
	return b.err
}
