// Package main is the statsctl command line. See internal/cli.
package main

import "github.com/sakif/gitstats/internal/cli"

func main() {
	cli.Execute()
}
