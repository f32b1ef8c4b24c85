package main

import (
	"os"

	"workmux/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
