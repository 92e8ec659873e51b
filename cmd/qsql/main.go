package main

import "github.com/kobzarvs/qsql/internal/cli"

func main() {
	cli.Execute()
}
