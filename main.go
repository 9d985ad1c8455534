package main

import "github.com/cardlens/cardlens/cmd"

func main() {
	cmd.Execute()
}
