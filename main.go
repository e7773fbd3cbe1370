package main

import "github.com/aynalemL/Facebook-Stock-Market-Analysis/cmd"

func main() {
	cmd.Execute()
}
