package main

import "github.com/brogergvhs/noveltomanga/cmd"

func main() {
	cmd.Execute()
}
