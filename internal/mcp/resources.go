package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/hyper-mcp/internal/mcp/tools"
	"github.com/usestring/hyper-mcp/pkg/hyper"
	"github.com/usestring/hyper-mcp/pkg/jsoncompact"
)

// Resource URI scheme: hyper://
// Supported URIs:
//   hyper://data/{id}
//   hyper://cache/{key}
//   hyper://results/{result_set_id}

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "hyper://data/{id}",
		Name:        "Data Document",
		Description: "One document from the data service, uncompacted up to the resource size limit. hyper_data_get already returns the document; fetch this for the raw form.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceData)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "hyper://cache/{key}",
		Name:        "Cache Entry",
		Description: "The value cached under a key.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.5,
		},
	}, s.handleResourceCache)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "hyper://results/{result_set_id}",
		Name:        "Result Set",
		Description: "All documents of a stored result set. High context cost - list tools already return a preview and hyper_jq extracts fields. Only fetch for a complete dump.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.3,
		},
	}, s.handleResourceResults)
}

// Resource handlers

func (s *Server) handleResourceData(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	id, err := resourceParam(req.Params.URI, tools.DataResourcePrefix)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Flight.Do(req.Params.URI, func() (hyper.Result, error) {
		return s.deps.Client.Data().Get(ctx, id)
	})
	if err != nil {
		return nil, tools.WrapHyperError(err)
	}
	doc, ok := res.(*hyper.DocResult)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return s.toResourceResult(req.Params.URI, map[string]any(doc.Doc))
}

func (s *Server) handleResourceCache(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	key, err := resourceParam(req.Params.URI, tools.CacheResourcePrefix)
	if err != nil {
		return nil, err
	}
	res, err := s.deps.Flight.Do(req.Params.URI, func() (hyper.Result, error) {
		return s.deps.Client.Cache().Get(ctx, key)
	})
	if err != nil {
		return nil, tools.WrapHyperError(err)
	}
	doc, ok := res.(*hyper.DocResult)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return s.toResourceResult(req.Params.URI, map[string]any(doc.Doc))
}

func (s *Server) handleResourceResults(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	id, err := resourceParam(req.Params.URI, tools.ResultsResourcePrefix)
	if err != nil {
		return nil, err
	}
	rs, ok := s.deps.Results.Get(id)
	if !ok {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}

	content := map[string]any{
		"result_set_id": rs.ID,
		"service":       rs.Service,
		"operation":     rs.Operation,
		"created_at":    rs.CreatedAt,
		"count":         len(rs.Docs),
		"docs":          rs.Docs,
	}
	return s.toResourceResult(req.Params.URI, content)
}

// Helper functions

// resourceParam extracts the single path parameter following prefix.
func resourceParam(uri, prefix string) (string, error) {
	if !strings.HasPrefix(uri, "hyper://") {
		return "", tools.ErrInvalidInput("invalid URI scheme: expected hyper://")
	}
	raw, ok := strings.CutPrefix(uri, prefix)
	if !ok || raw == "" {
		return "", tools.ErrInvalidInput(fmt.Sprintf("URI %s requires a value after %s", uri, prefix))
	}
	v, err := url.PathUnescape(raw)
	if err != nil {
		return "", tools.ErrInvalidInput("invalid escape in resource URI: " + err.Error())
	}
	return v, nil
}

// toResourceResult serializes content to a ReadResourceResult. Content
// larger than the configured limit is compacted.
func (s *Server) toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	if limit := s.deps.Config.ResourceMaxBodyBytes; limit > 0 && len(data) > limit {
		compacted, err := jsoncompact.Compact(data, s.deps.CompactOptions())
		if err != nil {
			return nil, fmt.Errorf("compacting resource: %w", err)
		}
		data = compacted
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
