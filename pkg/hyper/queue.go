package hyper

import (
	"context"
	"net/http"
)

// Queue job statuses understood by the backend.
const (
	JobStatusReady = "READY"
	JobStatusError = "ERROR"
)

// Queue is the job queue service.
type Queue struct {
	c *Client
}

// Enqueue posts a job.
func (s Queue) Enqueue(ctx context.Context, job any) (Result, error) {
	env, err := s.c.Do(ctx, "enqueue", LogicalRequest{Service: ServiceQueue, Method: http.MethodPost, Body: job})
	if err != nil {
		return nil, err
	}
	return env.Result(), nil
}

// Errors lists jobs that failed.
func (s Queue) Errors(ctx context.Context) (Result, error) {
	return s.jobs(ctx, "errors", JobStatusError)
}

// Queued lists jobs waiting to run.
func (s Queue) Queued(ctx context.Context) (Result, error) {
	return s.jobs(ctx, "queued", JobStatusReady)
}

func (s Queue) jobs(ctx context.Context, op, status string) (Result, error) {
	env, err := s.c.Do(ctx, op, LogicalRequest{Service: ServiceQueue, Method: http.MethodGet, Params: Params{"status": status}})
	if err != nil {
		return nil, err
	}
	return env.JobsResult()
}
