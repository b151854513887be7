// Package main provides the linkmapper CLI.
package main

import "github.com/mesh-intelligence/linkmapper/internal/cli"

func main() {
	cli.Execute()
}
