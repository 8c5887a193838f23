package main

import "github.com/example/wordtrack/cmd"

func main() {
	cmd.Execute()
}
