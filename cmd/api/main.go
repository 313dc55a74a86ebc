package main

import (
	"os"

	"Itemizer/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
