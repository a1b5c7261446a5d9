package main

import "github.com/sadopc/nudge/cmd"

func main() {
	cmd.Execute()
}
