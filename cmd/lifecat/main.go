// Command lifecat serves and queries the life-category taxonomy.
//
// Usage:
//
//	lifecat serve                   JSON API (and optional fixture watcher)
//	lifecat search <term>           grouped substring search
//	lifecat tree [--depth N]        indented hierarchy
//	lifecat main                    top-level categories
//	lifecat path <id>               chain from the main category to id
//	lifecat descendants <id>        everything below id
//	lifecat sync                    mirror the taxonomy into PostgreSQL
//	lifecat mcp                     MCP tool server on stdio
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
