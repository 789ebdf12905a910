package main

import "fairline/internal/cli"

func main() {
	cli.Execute()
}
