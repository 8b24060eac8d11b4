package main

import (
	"os"

	"github.com/emrgen/graphbase/internal/server"
)

func main() {
	httpPort := os.Getenv("HTTP_PORT")
	if httpPort == "" {
		httpPort = "8080"
	}

	err := server.Start(httpPort)
	if err != nil {
		return
	}
}
