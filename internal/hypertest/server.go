// Package hypertest runs an in-memory hyper backend for tests.
//
// The server speaks the hyper REST dialect closely enough for the client's
// round trips: data, cache, search, storage and queue services under
// /{service}/{domain}, and the info endpoint at the root. Start it with
// NewServer and point a non-cloud connection string at ConnectionString.
package hypertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// RecordedRequest is a request as seen by the server.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	ContentType   string
}

type fault struct {
	status      int
	contentType string
	body        string
}

type object struct {
	contentType string
	data        []byte
}

// Server is a fake hyper backend.
type Server struct {
	*httptest.Server

	key    string
	secret string

	mu       sync.Mutex
	requests []RecordedRequest
	faults   []fault
	data     map[string]map[string]map[string]any // domain -> id -> doc
	indexes  map[string][]string
	cache    map[string]map[string]any
	search   map[string]map[string]map[string]any
	objects  map[string]map[string]object
	jobs     map[string][]map[string]any
	seq      int
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials makes the server require a bearer token signed with
// secret whose subject is key.
func WithCredentials(key, secret string) Option {
	return func(s *Server) {
		s.key = key
		s.secret = secret
	}
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{
		data:    make(map[string]map[string]map[string]any),
		indexes: make(map[string][]string),
		cache:   make(map[string]map[string]any),
		search:  make(map[string]map[string]map[string]any),
		objects: make(map[string]map[string]object),
		jobs:    make(map[string][]map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

// ConnectionString returns a non-cloud connection string addressing domain
// on this server, with credentials when the server requires them.
func (s *Server) ConnectionString(domain string) string {
	u, _ := url.Parse(s.URL)
	userinfo := ""
	if s.secret != "" {
		userinfo = s.key + ":" + s.secret + "@"
	}
	return fmt.Sprintf("%s://%s%s/%s", u.Scheme, userinfo, u.Host, domain)
}

// FailNext makes the next request fail with status and a plain-text body.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{status: status, contentType: "text/plain", body: body})
}

// RespondNext makes the next request return body verbatim.
func (s *Server) RespondNext(status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{status: status, contentType: contentType, body: body})
}

// Requests returns the requests received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}
	}
	return s.requests[len(s.requests)-1]
}

// SetJobStatus moves every job in domain to status.
func (s *Server) SetJobStatus(domain, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs[domain] {
		job["status"] = status
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.injectFaults)
	r.Use(s.authenticate)

	r.Get("/", s.handleInfo)

	r.Route("/data/{domain}", func(r chi.Router) {
		r.Post("/", s.dataAdd)
		r.Get("/", s.dataList)
		r.Post("/_query", s.dataQuery)
		r.Post("/_index", s.dataIndex)
		r.Post("/_bulk", s.dataBulk)
		r.Get("/{id}", s.dataGet)
		r.Put("/{id}", s.dataUpdate)
		r.Delete("/{id}", s.dataRemove)
	})

	r.Route("/cache/{domain}", func(r chi.Router) {
		r.Post("/", s.cacheAdd)
		r.Post("/_query", s.cacheQuery)
		r.Get("/{key}", s.cacheGet)
		r.Put("/{key}", s.cacheSet)
		r.Delete("/{key}", s.cacheRemove)
	})

	r.Route("/search/{domain}", func(r chi.Router) {
		r.Post("/", s.searchAdd)
		r.Post("/_query", s.searchQuery)
		r.Post("/_bulk", s.searchLoad)
		r.Get("/{key}", s.searchGet)
		r.Put("/{key}", s.searchUpdate)
		r.Delete("/{key}", s.searchRemove)
	})

	r.Route("/storage/{domain}", func(r chi.Router) {
		r.Post("/", s.storageUpload)
		r.Get("/{name}", s.storageDownload)
		r.Delete("/{name}", s.storageRemove)
	})

	r.Route("/queue/{domain}", func(r chi.Router) {
		r.Post("/", s.queueEnqueue)
		r.Get("/", s.queueJobs)
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			f = &s.faults[0]
			s.faults = s.faults[1:]
		}
		s.mu.Unlock()

		if f == nil {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", f.contentType)
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.secret == "" || r.URL.Path == "/" {
			next.ServeHTTP(w, r)
			return
		}
		raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found {
			writeNotOK(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		var claims jwt.RegisteredClaims
		_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return []byte(s.secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
		if err != nil || claims.Subject != s.key {
			writeNotOK(w, http.StatusForbidden, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     "hyper",
		"version":  "1.0-test",
		"services": []string{"data", "cache", "search", "storage", "queue"},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, extra map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeNotOK(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "msg": msg, "status": status})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}
