package main

import "github.com/vietdv277/sshdash/cmd"

func main() {
	cmd.Execute()
}
