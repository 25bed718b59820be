package main

import "github.com/mcoot/conquest-go/internal/cli"

func main() {
	cli.Execute()
}
