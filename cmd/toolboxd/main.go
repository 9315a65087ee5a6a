package main

import (
	"context"
	"log"
	"os"

	"toolbox/internal/config"
	"toolbox/internal/daemonrun"
)

func main() {
	path, opts := bootstrapOptions(os.Args[1:], os.Getenv)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("toolboxd: %v", err)
	}
}
