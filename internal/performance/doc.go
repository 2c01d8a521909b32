// Package performance holds the pipeline benchmarks and the large-input
// tests that are too slow for the package test suites.
//
// Run the benchmarks with:
//
//	go test -run '^$' -bench . -benchmem ./internal/performance/...
//
// or through the build tool with go run build.go -target=bench.
package performance
