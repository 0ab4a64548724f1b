package main

import "github.com/KostasZigo/gitgo/cmd"

func main() {
	cmd.Execute()
}
