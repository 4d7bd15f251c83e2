package main

import "github.com/iksnae/adk-chat/cmd"

func main() {
	cmd.Execute()
}
