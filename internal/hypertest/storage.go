package hypertest

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) domainObjects(domain string) map[string]object {
	objs, ok := s.objects[domain]
	if !ok {
		objs = make(map[string]object)
		s.objects[domain] = objs
	}
	return objs
}

// Object returns a stored object's bytes and content type.
func (s *Server) Object(domain, name string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[domain][name]
	return o.data, o.contentType, ok
}

// PutObject stores an object directly, bypassing the upload endpoint.
func (s *Server) PutObject(domain, name, contentType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainObjects(domain)[name] = object{contentType: contentType, data: data}
}

func (s *Server) storageUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeNotOK(w, http.StatusBadRequest, "multipart field file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeNotOK(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainObjects(chi.URLParam(r, "domain"))[header.Filename] = object{
		contentType: header.Header.Get("Content-Type"),
		data:        data,
	}
	writeOK(w, http.StatusCreated, nil)
}

func (s *Server) storageDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	o, ok := s.domainObjects(chi.URLParam(r, "domain"))[chi.URLParam(r, "name")]
	s.mu.Unlock()
	if !ok {
		writeNotOK(w, http.StatusNotFound, "object not found")
		return
	}
	if o.contentType != "" {
		w.Header().Set("Content-Type", o.contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(o.data)
}

func (s *Server) storageRemove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	defer s.mu.Unlock()
	objs := s.domainObjects(chi.URLParam(r, "domain"))
	if _, ok := objs[name]; !ok {
		writeNotOK(w, http.StatusNotFound, "object not found")
		return
	}
	delete(objs, name)
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) queueEnqueue(w http.ResponseWriter, r *http.Request) {
	var job map[string]any
	if err := decodeJSON(r, &job); err != nil {
		writeNotOK(w, http.StatusUnprocessableEntity, "job must be a JSON object")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	domain := chi.URLParam(r, "domain")
	id := s.nextID("job")
	s.jobs[domain] = append(s.jobs[domain], map[string]any{"id": id, "status": "READY", "job": job})
	writeOK(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) queueJobs(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]map[string]any, 0)
	for _, job := range s.jobs[chi.URLParam(r, "domain")] {
		if status == "" || job["status"] == status {
			jobs = append(jobs, job)
		}
	}
	writeOK(w, http.StatusOK, map[string]any{"jobs": jobs})
}
