package main

import "github.com/hackhub-dev/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
