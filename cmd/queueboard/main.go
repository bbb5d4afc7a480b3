package main

import "github.com/go-arrower/queueboard/cmd"

func main() {
	cmd.Execute()
}
