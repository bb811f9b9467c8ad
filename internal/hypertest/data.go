package hypertest

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

func docID(doc map[string]any) string {
	for _, k := range []string{"_id", "id"} {
		if s, ok := doc[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (s *Server) domainDocs(domain string) map[string]map[string]any {
	docs, ok := s.data[domain]
	if !ok {
		docs = make(map[string]map[string]any)
		s.data[domain] = docs
	}
	return docs
}

func (s *Server) dataAdd(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := decodeJSON(r, &doc); err != nil {
		writeNotOK(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.domainDocs(chi.URLParam(r, "domain"))
	id := docID(doc)
	if id == "" {
		id = s.nextID("doc")
		doc["_id"] = id
	}
	if _, exists := docs[id]; exists {
		writeNotOK(w, http.StatusConflict, "document conflict")
		return
	}
	docs[id] = doc
	writeOK(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) dataGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.domainDocs(chi.URLParam(r, "domain"))[chi.URLParam(r, "id")]
	if !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) dataUpdate(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := decodeJSON(r, &doc); err != nil {
		writeNotOK(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.domainDocs(chi.URLParam(r, "domain"))
	if _, ok := docs[id]; !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	doc["_id"] = id
	docs[id] = doc
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) dataRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.domainDocs(chi.URLParam(r, "domain"))
	if _, ok := docs[id]; !ok {
		writeNotOK(w, http.StatusNotFound, "not found")
		return
	}
	delete(docs, id)
	writeOK(w, http.StatusOK, map[string]any{"id": id})
}

func (s *Server) dataList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeNotOK(w, http.StatusUnprocessableEntity, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.domainDocs(chi.URLParam(r, "domain"))

	var ids []string
	if keys := q.Get("keys"); keys != "" {
		for _, id := range strings.Split(keys, ",") {
			if _, ok := docs[id]; ok {
				ids = append(ids, id)
			}
		}
	} else {
		start, end := q.Get("startkey"), q.Get("endkey")
		for id := range docs {
			if start != "" && id < start {
				continue
			}
			if end != "" && id > end {
				continue
			}
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}
	if q.Get("descending") == "true" {
		sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, docs[id])
	}
	writeOK(w, http.StatusOK, map[string]any{"docs": out})
}

type dataQueryBody struct {
	Selector map[string]any      `json:"selector"`
	Fields   []string            `json:"fields"`
	Sort     []map[string]string `json:"sort"`
	Limit    *int                `json:"limit"`
	UseIndex string              `json:"use_index"`
}

func (s *Server) dataQuery(w http.ResponseWriter, r *http.Request) {
	var body dataQueryBody
	if err := decodeJSON(r, &body); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "invalid query: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	domain := chi.URLParam(r, "domain")
	if body.UseIndex != "" {
		if _, ok := s.indexes[domain+"/"+body.UseIndex]; !ok {
			writeNotOK(w, http.StatusBadRequest, "unknown index "+body.UseIndex)
			return
		}
	}

	var matched []map[string]any
	for _, doc := range s.domainDocs(domain) {
		if matches(doc, body.Selector) {
			matched = append(matched, doc)
		}
	}
	sortDocs(matched, body.Sort)
	if body.Limit != nil && *body.Limit >= 0 && len(matched) > *body.Limit {
		matched = matched[:*body.Limit]
	}

	out := make([]map[string]any, 0, len(matched))
	for _, doc := range matched {
		out = append(out, project(doc, body.Fields))
	}
	writeOK(w, http.StatusOK, map[string]any{"docs": out})
}

func (s *Server) dataIndex(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string   `json:"name"`
		Type   string   `json:"type"`
		Fields []string `json:"fields"`
	}
	if err := decodeJSON(r, &body); err != nil || body.Name == "" || len(body.Fields) == 0 {
		writeNotOK(w, http.StatusUnprocessableEntity, "index requires name and fields")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexes[chi.URLParam(r, "domain")+"/"+body.Name] = body.Fields
	writeOK(w, http.StatusCreated, nil)
}

func (s *Server) dataBulk(w http.ResponseWriter, r *http.Request) {
	var docs []map[string]any
	if err := decodeJSON(r, &docs); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "bulk body must be a list of objects")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.domainDocs(chi.URLParam(r, "domain"))
	results := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		id := docID(doc)
		if id == "" {
			id = s.nextID("doc")
			doc["_id"] = id
		}
		store[id] = doc
		results = append(results, map[string]any{"ok": true, "id": id})
	}
	writeOK(w, http.StatusCreated, map[string]any{"results": results})
}

// matches reports whether every selector field equals the document field.
func matches(doc, selector map[string]any) bool {
	for k, want := range selector {
		if doc[k] != want {
			return false
		}
	}
	return true
}

func project(doc map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return doc
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

// sortDocs orders by the first sort field; ties and unsortable values fall
// back to id order.
func sortDocs(docs []map[string]any, spec []map[string]string) {
	field, desc := "", false
	if len(spec) > 0 {
		for f, dir := range spec[0] {
			field, desc = f, strings.EqualFold(dir, "DESC")
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docID(docs[i]), docID(docs[j])
		if field != "" {
			a, b = toString(docs[i][field]), toString(docs[j][field])
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
