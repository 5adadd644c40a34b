package main

import "github.com/bigincgenesis/bigcli/cmd"

func main() {
	cmd.Execute()
}
