package main

import "github.com/kamusis/primview/cmd"

func main() {
	cmd.Execute()
}
