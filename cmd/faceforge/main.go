package main

import "github.com/faceforge/faceforge/internal/cmd"

func main() {
	cmd.Execute()
}
