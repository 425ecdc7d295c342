package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/noah-isme/school-portal-api/migrations"
	"github.com/noah-isme/school-portal-api/pkg/config"
	"github.com/noah-isme/school-portal-api/pkg/database"
)

const usage = "usage: migrate <up|up-by-one|up-to VERSION|down|down-to VERSION|redo|reset|status|version>"

var gooseRun = goose.Run

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", database.DSN(cfg.Database))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	if err := run(db, os.Args[1:]); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run(db *sql.DB, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf(usage)
	}
	switch args[0] {
	case "up-to", "down-to":
		if len(args) != 2 {
			return fmt.Errorf("%s requires a VERSION argument", args[0])
		}
	case "up", "up-by-one", "down", "redo", "reset", "status", "version":
	default:
		return fmt.Errorf("unknown command %q; %s", args[0], usage)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRun(args[0], db, ".", args[1:]...)
}
