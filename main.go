/*
Copyright © 2025 tieubaoca
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/tieubaoca/sheetchat-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// The .env file is optional; environment variables may be set directly.
	godotenv.Load()
}
