package main

import "github.com/dslh/mcp-nexus/internal/cmd"

func main() {
	cmd.Execute()
}
