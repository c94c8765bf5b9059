// Package main provides the probegate CLI for verifying sandbox probes
// against their static and dynamic contract.
package main

func main() {
	Execute()
}
