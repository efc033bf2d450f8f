package main

import "gigcast/cmd"

func main() {
	cmd.Execute()
}
