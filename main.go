// Package main provides the entry point stub for etissbench.
// etissbench automates building and running ETISS benchmarks across
// configuration sweeps for profiling and performance analysis.
//
// For the full CLI, use: go run ./cmd/etissbench
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("etissbench - ETISS benchmark sweep tool")
	fmt.Println("")
	fmt.Println("Usage: etissbench [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --programs        Programs to run")
	fmt.Println("  --jits            JIT compilers to test (GCC, TCC, LLVM)")
	fmt.Println("  --block-sizes     Block sizes to test")
	fmt.Println("  --output          Output file for results (JSON)")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/etissbench --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/etissbench' instead.")
	}
}
