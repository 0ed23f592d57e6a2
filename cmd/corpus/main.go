package main

import "corpus/internal/cli"

func main() {
	cli.Execute()
}
