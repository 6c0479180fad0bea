// Package envelope builds the single-text-block results every gateway
// operation returns
package envelope

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Text creates a successful result holding one text block
func Text(format string, args ...any) *mcp.CallToolResult {
	return build(false, fmt.Sprintf(format, args...))
}

// Error creates a result holding one text block with isError set
func Error(format string, args ...any) *mcp.CallToolResult {
	return build(true, fmt.Sprintf(format, args...))
}

// TextOf returns the concatenated text blocks of a result
func TextOf(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var text string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			text += tc.Text
		}
	}
	return text
}

func build(isError bool, message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: isError,
	}
}
