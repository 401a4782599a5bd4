package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/roboco-io/fcmetrics/internal/cli"
)

var version = "dev"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "오류: %v\n", err)
		os.Exit(1)
	}
}
