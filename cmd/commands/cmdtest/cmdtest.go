// Package cmdtest runs xervo commands against a fake librarian API.
package cmdtest

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"onmodulus/xervo/internal/config"
	"onmodulus/xervo/internal/database"
	"onmodulus/xervo/internal/services/auth"

	"github.com/spf13/cobra"
)

// Token is the API token stored for the test user.
const Token = "test-token"

// Request is one request received by the fake API.
type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   string
}

// Responder answers one request with a JSON body.
type Responder func(r Request) string

// API is a fake librarian server routing "METHOD /path" to responders.
type API struct {
	Server *httptest.Server

	mu       sync.Mutex
	routes   map[string]Responder
	requests []Request
}

// Handle registers a responder for method and path.
func (a *API) Handle(method, path string, fn Responder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+path] = fn
}

// JSON registers a fixed response body for method and path.
func (a *API) JSON(method, path, body string) {
	a.Handle(method, path, func(Request) string { return body })
}

// Sequence registers responses served in order; the last one repeats.
func (a *API) Sequence(method, path string, bodies ...string) {
	var mu sync.Mutex
	a.Handle(method, path, func(Request) string {
		mu.Lock()
		defer mu.Unlock()
		b := bodies[0]
		if len(bodies) > 1 {
			bodies = bodies[1:]
		}
		return b
	})
}

// Requests returns every request received so far.
func (a *API) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// Find returns the requests made to method and path.
func (a *API) Find(method, path string) []Request {
	var out []Request
	for _, r := range a.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	req := Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Token:  r.URL.Query().Get("authToken"),
		Body:   string(body),
	}
	a.mu.Lock()
	a.requests = append(a.requests, req)
	fn, ok := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_, _ = w.Write([]byte(`{"error":{"id":"NOT_FOUND","message":"no route ` + r.Method + ` ` + r.URL.Path + `"}}`))
		return
	}
	_, _ = w.Write([]byte(fn(req)))
}

// Env is an isolated CLI environment: config file, token store,
// operation database and cache all live under a temp dir.
type Env struct {
	API   *API
	Store *auth.MockStore
	Dir   string
}

// Setup builds an Env logged in as user "ada" (id "u1") with a 1ms poll
// interval.
func Setup(t *testing.T) *Env {
	t.Helper()
	dir := t.TempDir()

	api := &API{routes: map[string]Responder{}}
	api.Server = httptest.NewServer(api)
	t.Cleanup(api.Server.Close)

	host, portStr, err := net.SplitHostPort(api.Server.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(portStr)

	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)
	database.SetPath(filepath.Join(dir, "xervo.db"))
	t.Cleanup(database.ResetPath)

	store := auth.NewMockStore()
	auth.SetDefaultStore(store)
	t.Cleanup(auth.ResetDefaultStore)

	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv(config.EnvToken, "")
	t.Setenv(config.EnvAPIHost, "")
	t.Setenv(config.EnvAPIPort, "")
	t.Setenv(config.EnvAPISSL, "")
	t.Setenv("ACCESSIBLE", "")

	ssl := false
	cfg := &config.Config{
		APIHost:      host,
		APIPort:      port,
		APISSL:       &ssl,
		Username:     "ada",
		UserID:       "u1",
		PollInterval: "1ms",
	}
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	if err := store.SetToken("ada", Token); err != nil {
		t.Fatal(err)
	}
	return &Env{API: api, Store: store, Dir: dir}
}

// Logout removes the stored identity and token.
func (e *Env) Logout(t *testing.T) {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.ClearIdentity()
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	_ = e.Store.DeleteToken("ada")
}

// Run executes cmd with args and returns its output and error.
func Run(t *testing.T, cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	return RunIn(t, cmd, "", args...)
}

// RunIn is Run with stdin.
func RunIn(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}
