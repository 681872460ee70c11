package main

import (
	"os"

	"github.com/xtding233/buffon-needle/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:], os.Stdout, os.Stderr))
}
