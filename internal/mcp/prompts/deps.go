// Package prompts contains MCP prompt implementations for hyper.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	Connection string // redacted
	Domain     string
}
