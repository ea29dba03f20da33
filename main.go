package main

import "sweetshop/internal/cmd"

func main() {
	cmd.Execute()
}
