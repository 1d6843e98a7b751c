package main

import "cfbot/cmd"

func main() {
	cmd.Execute()
}
