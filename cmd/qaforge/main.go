package main

import "qaforge/internal/cli"

func main() {
	cli.Execute()
}
