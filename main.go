package main

import "github.com/papapumpkin/stacker/cmd"

func main() {
	cmd.Execute()
}
