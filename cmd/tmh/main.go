package main

import "github.com/mcoot/trackmyhand/internal/cli"

func main() {
	cli.Execute()
}
