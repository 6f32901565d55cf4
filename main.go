package main

import (
	"github.com/joho/godotenv"

	"onmodulus/xervo/cmd"
)

func main() {
	// A missing .env is fine; variables already set take precedence.
	_ = godotenv.Load()
	cmd.Execute()
}
