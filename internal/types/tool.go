// Package types holds the argument structs of the gateway tools.
//
// Fields carry omitempty so the inferred input schemas leave them optional;
// handlers report missing values as error results instead of protocol errors.
package types

// ServerToolsRequest names the tools of one server whose input schemas are
// wanted
type ServerToolsRequest struct {
	ServerName string   `json:"server_name,omitempty" jsonschema:"Server name"`
	ToolNames  []string `json:"tool_names,omitempty" jsonschema:"Tool names. The input schema of each tool will be returned."`
}

// SchemaLookupArgs defines the arguments for the get-input-schema-for-tools MCP tool
type SchemaLookupArgs struct {
	Servers []ServerToolsRequest `json:"servers,omitempty" jsonschema:"An array including the server names and tool names for each server."`
}

// CallToolArgs defines the arguments for the call-tool MCP tool
type CallToolArgs struct {
	ServerName string         `json:"server_name,omitempty" jsonschema:"Server name"`
	ToolName   string         `json:"tool_name,omitempty" jsonschema:"Tool name"`
	Args       map[string]any `json:"args,omitempty" jsonschema:"Arguments for the tool. You can confirm the input schema for the arguments of each tool using a tool get-input-schema-for-tools. If no arguments are required to be used, provide just {}."`
}
