package main

import "github.com/Tiliavir/stt/cmd"

func main() {
	cmd.Execute()
}
