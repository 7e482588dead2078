package main

import "github.com/KaramelBytes/dataclean-cli/cmd"

func main() {
	cmd.Execute()
}
