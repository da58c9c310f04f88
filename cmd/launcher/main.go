package main

import "github.com/winningticket/launcher/internal/cli"

func main() {
	cli.Execute()
}
