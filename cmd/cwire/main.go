package main

import "cwire/cmd/cwire/cmd"

func main() {
	cmd.Execute()
}
