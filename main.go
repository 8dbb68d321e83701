package main

import "github.com/serenichron/openclaw-memory-mem0/cmd"

func main() {
	cmd.Execute()
}
