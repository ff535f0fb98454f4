// Command cachebench infers CPU cache hierarchy parameters from measured
// memory-access latency. Sweep points stream to stdout as CSV; everything
// else goes to stderr.
package main

func main() {
	Execute()
}
