package main

import "github.com/KaramelBytes/nfrscope-cli/cmd"

func main() {
	cmd.Execute()
}
