package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "hyper_guide",
		Description: "RECOMMENDED: How to work with the hyper services through these tools. Start here - explains result sets, not-ok results and the analysis tools without fetching any data.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "service",
				Description: "Focus on one service: data, cache, search, storage or queue",
				Required:    false,
			},
		},
	}, HandleGuide(cfg))
}
