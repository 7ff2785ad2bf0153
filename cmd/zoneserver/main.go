package main

import (
	"fmt"
	"os"
)

func main() {
	app, err := InitializeApp()
	if err != nil {
		fmt.Printf("zoneserver: failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Printf("zoneserver: failed to run: %v\n", err)
		os.Exit(1)
	}
}
