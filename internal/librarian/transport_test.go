package librarian

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onmodulus/xervo/internal/domain"
)

// newTestTransport points a Transport at srv.
func newTestTransport(t *testing.T, srv *httptest.Server, logger *slog.Logger) *Transport {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	tr := NewTransport(Options{
		Endpoint:   Endpoint{Host: host, Port: port},
		HTTPClient: srv.Client(),
		Logger:     logger,
	})
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestSend_EnvelopeRules(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		wantErr *Error
	}{
		{name: "object", body: `{"id":"p1","status":"running"}`},
		{name: "array", body: `[{"id":"p1"}]`},
		{name: "null", body: `null`, wantNil: true},
		{name: "null with whitespace", body: "  null\n", wantNil: true},
		{name: "falsy error field", body: `{"error":null,"errors":[],"id":"x"}`, wantErr: &Error{Kind: KindAPI}},
		{name: "false error", body: `{"error":false,"id":"x"}`},
		{name: "empty string error", body: `{"error":"","id":"x"}`},
		{name: "zero error", body: `{"error":0,"id":"x"}`},
		{
			name:    "errors array",
			body:    `{"errors":[{"id":"PROJECT_NOT_FOUND","message":"Project not found."},{"id":"OTHER","message":"second"}]}`,
			wantErr: &Error{Kind: KindAPI, ID: "PROJECT_NOT_FOUND", Message: "Project not found."},
		},
		{
			name:    "error object",
			body:    `{"error":{"id":"INVALID_AUTH","message":"Invalid token."}}`,
			wantErr: &Error{Kind: KindAPI, ID: "INVALID_AUTH", Message: "Invalid token."},
		},
		{
			name:    "error string",
			body:    `{"error":"Something broke"}`,
			wantErr: &Error{Kind: KindAPI, Message: "Something broke"},
		},
		{
			name:    "errors wins over error",
			body:    `{"error":"secondary","errors":[{"message":"primary"}]}`,
			wantErr: &Error{Kind: KindAPI, Message: "primary"},
		},
		{
			name:    "html from a proxy",
			body:    `<html><body>502 Bad Gateway</body></html>`,
			wantErr: &Error{Kind: KindProtocol},
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: &Error{Kind: KindProtocol},
		},
		{
			name:    "truncated json",
			body:    `{"id":"p1",`,
			wantErr: &Error{Kind: KindProtocol},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(respond(tt.body))
			defer srv.Close()

			payload, err := newTestTransport(t, srv, nil).Send(context.Background(), http.MethodGet, "/x", nil, nil)

			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantNil, payload.IsNull())
				return
			}
			var got *Error
			require.ErrorAs(t, err, &got)
			assert.Equal(t, tt.wantErr.Kind, got.Kind)
			if tt.wantErr.Message != "" {
				assert.Equal(t, tt.wantErr.Message, got.Message)
				assert.Equal(t, tt.wantErr.Message, Message(err))
			}
			if tt.wantErr.ID != "" {
				assert.Equal(t, tt.wantErr.ID, got.ID)
			}
			assert.Nil(t, payload)
		})
	}
}

func TestSend_FalsyEnvelopeIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(respond(`{"error":false,"id":"x"}`))
	defer srv.Close()

	payload, err := newTestTransport(t, srv, nil).Send(context.Background(), http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "x", payload.Get("id").String())
}

func TestSend_ProtocolErrorHidesParserText(t *testing.T) {
	bodies := []string{"<html>", "not json at all", `{"a":}`, "\x00\x01"}
	for _, body := range bodies {
		srv := httptest.NewServer(respond(body))
		_, err := newTestTransport(t, srv, nil).Send(context.Background(), http.MethodGet, "/x", nil, nil)
		srv.Close()

		require.Error(t, err)
		assert.Equal(t, unexpectedResult, err.Error(), "body %q", body)
		assert.True(t, IsTransient(err))
	}
}

func TestSend_APIErrorIgnoresHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"errors":[{"id":"PROJECT_NOT_FOUND","message":"Project not found."}]}`)
	}))
	defer srv.Close()

	_, err := newTestTransport(t, srv, nil).Send(context.Background(), http.MethodGet, "/project/1", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, IsTransient(err))
}

func TestSend_SerializesBody(t *testing.T) {
	var gotBody, gotType, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get(RequestIDHeader)
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()

	body := map[string]string{"name": "my-app"}
	_, err := newTestTransport(t, srv, nil).Send(context.Background(), http.MethodPost, "/project/create", nil, body)
	require.NoError(t, err)

	assert.JSONEq(t, `{"name":"my-app"}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Len(t, gotID, 36)
}

func TestSend_TransportError(t *testing.T) {
	srv := httptest.NewServer(respond("null"))
	tr := newTestTransport(t, srv, nil)
	srv.Close()

	_, err := tr.Send(context.Background(), http.MethodGet, "/x", nil, nil)
	var got *Error
	require.ErrorAs(t, err, &got)
	assert.Equal(t, KindTransport, got.Kind)
	assert.True(t, IsTransient(err))
}

func TestSend_CanceledIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(respond("null"))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestTransport(t, srv, nil).Send(ctx, http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTransient(err))
}

func TestSend_NotInitialized(t *testing.T) {
	var nilTransport *Transport
	_, err := nilTransport.Send(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = NewTransport(Options{}).Send(context.Background(), http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)

	_, err = NewTransport(Options{Endpoint: Endpoint{Host: "api.example.com"}}).Raw(context.Background(), RawRequest{Method: http.MethodGet, Path: "/x"})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSend_RedactsTokenInLogs(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = io.WriteString(w, "null")
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	q := url.Values{TokenParam: {"s3cret-token"}, "start": {"1"}}
	_, err := newTestTransport(t, srv, logger).Send(context.Background(), http.MethodGet, "/x", q, nil)
	require.NoError(t, err)

	assert.Equal(t, "s3cret-token", got.Get(TokenParam), "token must still reach the server")
	assert.NotContains(t, buf.String(), "s3cret-token")
	assert.Contains(t, buf.String(), "REDACTED")
	assert.Contains(t, buf.String(), "start=1")
}

func TestEndpoint_BaseURL(t *testing.T) {
	tests := []struct {
		ep   Endpoint
		want string
	}{
		{Endpoint{Host: "api.onmodulus.net", Port: 443, SSL: true}, "https://api.onmodulus.net:443"},
		{Endpoint{Host: "localhost", Port: 8080}, "http://localhost:8080"},
		{Endpoint{Host: "::1", Port: 80}, "http://[::1]:80"},
	}
	for _, tt := range tests {
		if got := tt.ep.BaseURL(); got != tt.want {
			t.Errorf("BaseURL(%+v) = %q, want %q", tt.ep, got, tt.want)
		}
	}
}

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		target error
		want   bool
	}{
		{"not found by id", &Error{Kind: KindAPI, ID: "PROJECT_NOT_FOUND", Message: "x"}, domain.ErrNotFound, true},
		{"not found by message", &Error{Kind: KindAPI, Message: "Servo does not exist"}, domain.ErrNotFound, true},
		{"unauthorized by id", &Error{Kind: KindAPI, ID: "INVALID_AUTH", Message: "x"}, domain.ErrUnauthorized, true},
		{"unauthorized by status", &Error{Kind: KindAPI, StatusCode: 401, Message: "x"}, domain.ErrUnauthorized, true},
		{"conflict", &Error{Kind: KindAPI, Message: "A project with that name already exists."}, domain.ErrConflict, true},
		{"plain api error", &Error{Kind: KindAPI, Message: "boom"}, domain.ErrNotFound, false},
		{"transport never maps", &Error{Kind: KindTransport, StatusCode: 404}, domain.ErrNotFound, false},
		{"kind match", &Error{Kind: KindNotInitialized}, ErrNotInitialized, true},
		{"kind mismatch", &Error{Kind: KindAPI}, ErrNotInitialized, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvelopeError_DefaultMessage(t *testing.T) {
	_, err := interpret(200, []byte(`{"errors":[{}]}`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "without a message"))
}
