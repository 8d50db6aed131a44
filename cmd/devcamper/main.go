package main

import "github.com/utafrali/devcamper/cmd/devcamper/command"

func main() {
	command.Execute()
}
