package main

import "github.com/sergev/sony9pin/cmd"

func main() {
	cmd.Execute()
}
