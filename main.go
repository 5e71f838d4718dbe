package main

import (
	"revloop/internal/cli"
)

func main() {
	cli.Execute()
}
