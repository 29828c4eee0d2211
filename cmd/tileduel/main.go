package main

import (
	"github.com/tileduel/tileduel/internal/cli"
)

func main() {
	cli.Execute()
}
