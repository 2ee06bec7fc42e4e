package main

import (
	"os"

	"staff-attendance/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
