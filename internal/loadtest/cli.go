package loadtest

import "os"

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	os.Stdout.WriteString(`Skill Navigator Load Test
=========================

Registers many candidates concurrently against a running candidates
service, then lists the batches and checks that no batch exceeds its
capacity and that every rejection was "batch full" or "no match".

Usage:
  go run ./cmd/loadtest [options]

Options:
  -url string
        Base URL of the candidates service (default "http://localhost:8000")
  -candidates int
        Number of candidates to register (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -verbose
        Log every unexpected rejection
  -help
        Show this help message

Examples:
  go run ./cmd/loadtest -candidates 500 -workers 16
  go run ./cmd/loadtest -url http://localhost:9000 -verbose
`)
}
