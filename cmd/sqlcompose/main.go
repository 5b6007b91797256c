// Package main, sqlcompose CLI'ının giriş noktasıdır.
package main

import (
	"os"

	"github.com/biyonik/dml-composer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
