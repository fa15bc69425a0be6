package main

import "github.com/mcoot/gamedb-go/internal/cli"

func main() {
	cli.Execute()
}
