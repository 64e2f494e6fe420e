package main

import "github.com/wiggitywhitney/commit-story/cmd"

func main() {
	cmd.Execute()
}
