// Package main is the entry point for breeze-console.
package main

import "github.com/breeze-rmm/breeze-console/internal/cli"

func main() {
	cli.Execute()
}
