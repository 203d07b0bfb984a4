package main

import "github.com/MeKo-Tech/filmlook/internal/cmd"

func main() {
	cmd.Execute()
}
