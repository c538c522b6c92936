package main

import "pgbus/cmd"

func main() {
	cmd.Execute()
}
