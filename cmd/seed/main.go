package main

import (
	"flag"
	"fmt"
	"log"

	"roadwatch/internal/logger"
	"roadwatch/internal/repository/sqlite"
	"roadwatch/internal/services/signs"
)

func main() {
	dbPath := flag.String("db", "data/signs.db", "Database path")
	file := flag.String("file", "", "Sign table JSON (defaults to the bundled table)")
	flag.Parse()

	table, err := signs.LoadTable(*file)
	if err != nil {
		log.Fatalf("Failed to load sign table: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewSignRepository(db)
	added, err := signs.NewService(repo, table, logger.Nop()).Seed()
	if err != nil {
		log.Fatalf("Failed to seed signs: %v", err)
	}

	total, err := repo.Count()
	if err != nil {
		log.Fatalf("Failed to count signs: %v", err)
	}

	fmt.Printf("Seeded %d of %d catalogue entries into %s\n", added, len(table), *dbPath)
	fmt.Printf("Signs stored: %d\n", total)
}
