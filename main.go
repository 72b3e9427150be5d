package main

import (
	cmd "github.com/Global19-atlassian-net/wayback/internal/cli"
)

func main() {
	cmd.Execute()
}
