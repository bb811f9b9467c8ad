package hyper

import (
	"context"
	"net/http"
)

// Info is the instance info endpoint at the connection's origin.
type Info struct {
	c *Client
}

// Services reports the instance name, version and enabled services.
func (s Info) Services(ctx context.Context) (Result, error) {
	env, err := s.c.Do(ctx, "services", LogicalRequest{Service: ServiceInfo, Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return env.InfoResult(), nil
}
