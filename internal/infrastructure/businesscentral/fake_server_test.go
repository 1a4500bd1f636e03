package businesscentral

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testTenant  = "tenant-1"
	testCompany = "c0ffee00-0000-0000-0000-000000000001"
)

// recordedRequest is one resource request seen by fakeBC
type recordedRequest struct {
	Environment string
	Resource    Resource
	Query       url.Values
	RawQuery    string
	AuthHeader  string
}

// fakeBC emulates the token endpoint and the custom API
type fakeBC struct {
	t          *testing.T
	server     *httptest.Server
	tokenCalls atomic.Int32
	tokenDelay time.Duration
	expiresIn  int
	tokenFn    func(w http.ResponseWriter, r *http.Request)
	configure  func(*Config)

	mu       sync.Mutex
	requests []recordedRequest
	handle   func(env string, resource Resource, q url.Values) (int, any)
}

func newFakeBC(t *testing.T, handle func(env string, resource Resource, q url.Values) (int, any)) *fakeBC {
	t.Helper()
	f := &fakeBC{t: t, handle: handle, expiresIn: 3600}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeBC) config() *Config {
	cfg := NewConfig(testTenant, "client-1", "secret-1", testCompany)
	cfg.APIBaseURL = f.server.URL
	cfg.TokenURL = f.server.URL + "/{tenant}/oauth2/v2.0/token"
	cfg.Timeout = 5 * time.Second
	if f.configure != nil {
		f.configure(cfg)
	}
	return cfg
}

func (f *fakeBC) gateway(opts ...Option) *Gateway {
	f.t.Helper()
	opts = append([]Option{WithHTTPClient(f.server.Client())}, opts...)
	g, err := NewGateway(f.config(), opts...)
	require.NoError(f.t, err)
	return g
}

func (f *fakeBC) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeBC) serve(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/oauth2/v2.0/token") {
		n := f.tokenCalls.Add(1)
		if f.tokenDelay > 0 {
			time.Sleep(f.tokenDelay)
		}
		if f.tokenFn != nil {
			f.tokenFn(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"expires_in":   f.expiresIn,
			"token_type":   "Bearer",
		})
		return
	}

	// /v2.0/{tenant}/{env}/api/{publisher}/{group}/{version}/companies({id})/{resource}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if len(parts) != 9 || parts[0] != "v2.0" || parts[3] != "api" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"code": "BadRequest_NotFound"}})
		return
	}
	env := parts[2]
	resource := Resource(parts[8])
	q := r.URL.Query()

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Environment: env,
		Resource:    resource,
		Query:       q,
		RawQuery:    r.URL.RawQuery,
		AuthHeader:  r.Header.Get("Authorization"),
	})
	f.mu.Unlock()

	status, body := f.handle(env, resource, q)
	if raw, ok := body.(string); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(raw))
		return
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func noEnvironment() (int, any) {
	return http.StatusNotFound, map[string]any{
		"error": map[string]string{"code": "NoEnvironment", "message": "Environment does not exist."},
	}
}

func values(items ...map[string]any) (int, any) {
	if items == nil {
		items = []map[string]any{}
	}
	return http.StatusOK, map[string]any{"value": items}
}
