package main

import (
	"os"
	"time"
)

func init() {
	time.Local = time.UTC
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
