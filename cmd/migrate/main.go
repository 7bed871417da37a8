// Command migrate manages the billora database schema: clients, invoices,
// invoice_items, payment_schedules, and payments.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"billora/internal/config"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: migrate [-dir path] <command>

commands:
  up         apply all pending migrations
  down       revert all migrations
  steps N    apply N migrations; a negative N reverts
  force V    mark version V as applied after a failed migration
  version    print the current schema version`)
	os.Exit(2)
}

func main() {
	dir := flag.String("dir", "db/migrations", "migrations directory")
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: loading config: %v", err)
	}

	m, err := migrate.New("file://"+*dir, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	defer m.Close()

	switch cmd := flag.Arg(0); cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate up: %v", err)
		}
		log.Println("schema is up to date")

	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("schema reverted")

	case "steps":
		if flag.NArg() < 2 {
			usage()
		}
		n, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("migrate steps: %q is not a number", flag.Arg(1))
		}
		if err := m.Steps(n); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrate steps: %v", err)
		}
		log.Printf("applied %d steps", n)

	case "force":
		if flag.NArg() < 2 {
			usage()
		}
		v, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			log.Fatalf("migrate force: %q is not a version", flag.Arg(1))
		}
		if err := m.Force(v); err != nil {
			log.Fatalf("migrate force: %v", err)
		}
		log.Printf("schema version forced to %d", v)

	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("migrate version: %v", err)
		}
		if dirty {
			log.Printf("version %d (dirty)", v)
		} else {
			log.Printf("version %d", v)
		}

	default:
		usage()
	}
}
