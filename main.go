package main

import "github.com/theirongolddev/ccpulse/cmd"

func main() {
	cmd.Execute()
}
