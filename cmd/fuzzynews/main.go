// fuzzynews scores bedside observations with the NEWS-2 chart and its fuzzy
// counterpart, keeps per-patient history and serves both over HTTP and MCP.
//
// Usage:
//
//	fuzzynews calculate --rr 22 --spo2 94 --sbp 110 --pulse 105 --avpu A --temp 38.5
//	fuzzynews batch readings.yaml --parallel 4
//	fuzzynews history <patient-id> [--limit 10]
//	fuzzynews stats <patient-id> [--days 7]
//	fuzzynews serve [--addr :8000] [--config news2.yaml --watch]
//	fuzzynews mcp
//	fuzzynews config [--dump]
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
