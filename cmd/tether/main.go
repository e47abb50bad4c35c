// Package main provides the tether CLI, a stress and soak harness for the
// weak association table.
package main

func main() {
	Execute()
}
