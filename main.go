package main

import "github.com/KaramelBytes/gymbmi/cmd"

func main() {
	cmd.Execute()
}
