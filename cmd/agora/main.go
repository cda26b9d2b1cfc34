package main

import (
	"log"

	"github.com/hupe1980/agora"
	"github.com/hupe1980/agora/config"
)

func main() {
	settings := config.Load()

	app, err := agora.New(func(o *agora.Options) {
		o.Settings = settings
	})
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	if err := app.Serve(); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
