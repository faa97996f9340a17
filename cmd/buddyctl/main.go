package main

import "github.com/Jirawatp058/random-buddy/internal/cli"

func main() {
	cli.Execute()
}
