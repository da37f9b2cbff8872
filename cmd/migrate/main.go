package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/samirrijal/camslew/internal/adapters/postgres"
	"github.com/samirrijal/camslew/internal/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}

	cfg, err := config.Load("camslew-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "up":
		applied, err := db.MigrateUp(ctx)
		for _, v := range applied {
			fmt.Printf("OK  %s\n", v)
		}
		if err != nil {
			log.Fatalf("migrate up: %v", err)
		}
		log.Printf("%d migrations applied", len(applied))
	case "down":
		version, err := db.MigrateDown(ctx)
		if err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		if version == "" {
			log.Println("nothing to revert")
			return
		}
		fmt.Printf("REVERTED  %s\n", version)
	case "status":
		migrations, err := postgres.Migrations()
		if err != nil {
			log.Fatalf("list migrations: %v", err)
		}
		for _, m := range migrations {
			fmt.Println(m.Version)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
