package hypertest

import (
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) domainCache(domain string) map[string]any {
	c, ok := s.cache[domain]
	if !ok {
		c = make(map[string]any)
		s.cache[domain] = c
	}
	return c
}

func (s *Server) cacheAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
		TTL   string `json:"ttl"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Key == "" {
		writeNotOK(w, http.StatusUnprocessableEntity, "key is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.domainCache(chi.URLParam(r, "domain"))
	if _, exists := c[body.Key]; exists {
		writeNotOK(w, http.StatusConflict, "key already exists")
		return
	}
	c[body.Key] = body.Value
	writeOK(w, http.StatusCreated, nil)
}

func (s *Server) cacheGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.domainCache(chi.URLParam(r, "domain"))[key]
	if !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	if obj, isObj := v.(map[string]any); isObj {
		writeJSON(w, http.StatusOK, obj)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": v})
}

func (s *Server) cacheSet(w http.ResponseWriter, r *http.Request) {
	var v any
	if err := decodeJSON(r, &v); err != nil {
		writeNotOK(w, http.StatusBadRequest, "body must be JSON")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainCache(chi.URLParam(r, "domain"))[chi.URLParam(r, "key")] = v
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) cacheRemove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.domainCache(chi.URLParam(r, "domain"))
	if _, ok := c[key]; !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	delete(c, key)
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) cacheQuery(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		pattern = "*"
	}
	if _, err := path.Match(pattern, ""); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "bad pattern")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.domainCache(chi.URLParam(r, "domain"))
	keys := make([]string, 0, len(c))
	for k := range c {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	docs := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		docs = append(docs, map[string]any{"key": k, "value": c[k]})
	}
	writeOK(w, http.StatusOK, map[string]any{"docs": docs})
}

func (s *Server) domainIndex(domain string) map[string]map[string]any {
	idx, ok := s.search[domain]
	if !ok {
		idx = make(map[string]map[string]any)
		s.search[domain] = idx
	}
	return idx
}

func (s *Server) searchAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string         `json:"key"`
		Doc map[string]any `json:"doc"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Key == "" || body.Doc == nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "key and doc are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.domainIndex(chi.URLParam(r, "domain"))
	if _, exists := idx[body.Key]; exists {
		writeNotOK(w, http.StatusConflict, "key already indexed")
		return
	}
	idx[body.Key] = body.Doc
	writeOK(w, http.StatusCreated, nil)
}

func (s *Server) searchGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.domainIndex(chi.URLParam(r, "domain"))[key]
	if !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	writeOK(w, http.StatusOK, map[string]any{"key": key, "doc": doc})
}

func (s *Server) searchUpdate(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := decodeJSON(r, &doc); err != nil {
		writeNotOK(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.domainIndex(chi.URLParam(r, "domain"))
	if _, ok := idx[key]; !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	idx[key] = doc
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) searchRemove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.domainIndex(chi.URLParam(r, "domain"))
	if _, ok := idx[key]; !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	delete(idx, key)
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) searchLoad(w http.ResponseWriter, r *http.Request) {
	var docs []map[string]any
	if err := decodeJSON(r, &docs); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "load body must be a list of objects")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.domainIndex(chi.URLParam(r, "domain"))
	results := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		key, _ := doc["key"].(string)
		if key == "" {
			key = docID(doc)
		}
		if key == "" {
			results = append(results, map[string]any{"ok": false, "msg": "missing key"})
			continue
		}
		idx[key] = doc
		results = append(results, map[string]any{"ok": true, "key": key})
	}
	writeOK(w, http.StatusCreated, map[string]any{"results": results})
}

func (s *Server) searchQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query  string         `json:"query"`
		Fields []string       `json:"fields"`
		Filter map[string]any `json:"filter"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "invalid query")
		return
	}
	term := strings.ToLower(body.Query)

	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.domainIndex(chi.URLParam(r, "domain"))
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	matchesOut := make([]map[string]any, 0)
	for _, k := range keys {
		doc := idx[k]
		if !matches(doc, body.Filter) || !containsTerm(doc, body.Fields, term) {
			continue
		}
		hit := map[string]any{"key": k}
		for f, v := range doc {
			hit[f] = v
		}
		matchesOut = append(matchesOut, hit)
	}
	writeOK(w, http.StatusOK, map[string]any{"matches": matchesOut})
}

// containsTerm reports whether any of fields (every string field when
// fields is empty) contains term, case-insensitively.
func containsTerm(doc map[string]any, fields []string, term string) bool {
	if term == "" {
		return true
	}
	if len(fields) == 0 {
		for f := range doc {
			fields = append(fields, f)
		}
	}
	for _, f := range fields {
		if s, ok := doc[f].(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}
