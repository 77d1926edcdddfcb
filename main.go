package main

import "github.com/example/vocabmaster/cmd"

func main() {
	cmd.Execute()
}
