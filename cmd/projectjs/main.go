package main

import (
	"os"

	"projectjs/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
