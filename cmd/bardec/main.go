package main

import "github.com/MeKo-Tech/bardec/cmd/bardec/cmd"

func main() {
	cmd.Execute()
}
