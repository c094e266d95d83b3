package main

import "github.com/JonMunkholm/envdash/internal/cli"

func main() {
	cli.Execute()
}
