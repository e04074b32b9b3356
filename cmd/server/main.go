package main

import "blogapi/cmd/server/commands"

func main() {
	commands.Execute()
}
