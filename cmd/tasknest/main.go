// Package main provides the CLI entrypoint for tasknest.
package main

func main() {
	Execute()
}
