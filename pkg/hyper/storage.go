package hyper

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/usestring/hyper-mcp/pkg/contenttype"
)

// Storage is the blob storage service.
type Storage struct {
	c *Client
}

// Upload streams r to the store as name. The caller owns r and closes it
// after Upload returns.
func (s Storage) Upload(ctx context.Context, name string, r io.Reader) (Result, error) {
	start := time.Now()
	req := LogicalRequest{Service: ServiceStorage, Method: http.MethodPost}

	pr, pw := io.Pipe()
	// Closing the read side releases the writer if the body was not fully consumed.
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeFilePart(mw, name, r))
	}()
	req.Body = pr

	resp, err := s.c.send(ctx, req, mw.FormDataContentType())
	if err != nil {
		s.c.obs.observe(ctx, req, "upload", start, 0, outcomeError, err)
		return nil, fmt.Errorf("storage upload %q: %w", name, err)
	}
	defer resp.Body.Close()

	env, err := Normalize(resp)
	if err != nil {
		s.c.obs.observe(ctx, req, "upload", start, resp.StatusCode, outcomeFor(resp.StatusCode), err)
		return nil, fmt.Errorf("storage upload %q: %w", name, err)
	}
	s.c.obs.observe(ctx, req, "upload", start, resp.StatusCode, envelopeOutcome(env), nil)
	return env.Result(), nil
}

func writeFilePart(mw *multipart.Writer, name string, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": name}))
	h.Set("Content-Type", contenttype.ForName(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

// Download returns the live object body. The caller must drain and close
// it. A not-ok response is returned as a *NotOkError, a backend fault as a
// *FatalError.
func (s Storage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	start := time.Now()
	req := LogicalRequest{Service: ServiceStorage, Method: http.MethodGet, Resource: name}

	resp, err := s.c.send(ctx, req, "")
	if err != nil {
		s.c.obs.observe(ctx, req, "download", start, 0, outcomeError, err)
		return nil, fmt.Errorf("storage download %q: %w", name, err)
	}
	if resp.StatusCode < 400 {
		s.c.obs.observe(ctx, req, "download", start, resp.StatusCode, outcomeOK, nil)
		return resp.Body, nil
	}
	defer resp.Body.Close()

	env, err := Normalize(resp)
	if err != nil {
		s.c.obs.observe(ctx, req, "download", start, resp.StatusCode, outcomeFor(resp.StatusCode), err)
		return nil, fmt.Errorf("storage download %q: %w", name, err)
	}
	s.c.obs.observe(ctx, req, "download", start, resp.StatusCode, outcomeNotOK, nil)
	return nil, &NotOkError{Result: env.notOK()}
}

// Remove deletes the object.
func (s Storage) Remove(ctx context.Context, name string) (Result, error) {
	env, err := s.c.Do(ctx, "remove", LogicalRequest{Service: ServiceStorage, Method: http.MethodDelete, Resource: name})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

func outcomeFor(status int) string {
	if status >= 500 {
		return outcomeFatal
	}
	return outcomeError
}

func envelopeOutcome(env *Envelope) string {
	if env.OK {
		return outcomeOK
	}
	return outcomeNotOK
}
