package main

import (
	"os"

	"postapp/service"
)

func main() {
	if err := service.Execute(); err != nil {
		os.Exit(1)
	}
}
