package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/learnhub/seed/seeders"
	"github.com/lac-hong-legacy/learnhub/services"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		driver = flag.String("driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER env var)")
		dbPath = flag.String("db", "", "Database path or DSN (overrides DB_DATABASE / DATABASE_URL env vars)")
		force  = flag.Bool("force", false, "Overwrite an existing catalog")
		help   = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	dbDriver := *driver
	if dbDriver == "" {
		dbDriver = os.Getenv("DB_DRIVER")
		if dbDriver == "" {
			dbDriver = services.DriverSqlite
		}
	}

	dsn := *dbPath
	if dsn == "" {
		if dbDriver == services.DriverPostgres {
			dsn = os.Getenv("DATABASE_URL")
		} else {
			dsn = os.Getenv("DB_DATABASE")
		}
		if dsn == "" {
			dsn = "learnhub.db"
		}
	}

	db, err := services.OpenDatabase(dbDriver, dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database", dbDriver)

	seeder := seeders.NewCatalogSeeder(repositories.NewRecordRepository(db))
	seeded, err := seeder.SeedCatalog(context.Background(), *force)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}

	if seeded {
		log.Println("Seeding operation completed successfully!")
	}
}

func showHelp() {
	log.Print(`
Catalog Seeding Tool for LearnHub

Usage: go run ./seed [flags]

Flags:
  -driver string
        Database driver, sqlite or postgres (default from DB_DRIVER, then "sqlite")
  -db string
        Database path or DSN (overrides DB_DATABASE / DATABASE_URL)
  -force
        Replace an existing catalog with the default courses
  -help
        Show this help message

Environment Variables:
  DB_DRIVER    - Database driver (default: sqlite)
  DB_DATABASE  - SQLite database path (default: learnhub.db)
  DATABASE_URL - Postgres DSN
`)
}
