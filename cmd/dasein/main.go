package main

import "github.com/cotovicz/dasein/cmd/dasein/commands"

func main() {
	commands.Execute()
}
