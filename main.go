package main

import "github.com/gaurav-prasanna/pressblocks/cmd"

func main() {
	cmd.Execute()
}
