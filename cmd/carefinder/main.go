package main

import "github.com/zatekoja/carefinder/backend/internal/cli"

func main() {
	cli.Execute()
}
