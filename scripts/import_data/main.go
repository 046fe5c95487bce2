// Loads a JSON snapshot directory into the database.
//
// Rows whose keys already exist are skipped, so running the import twice
// against the same snapshot is a no-op.
//
// Usage: go run ./scripts/import_data [-dir snapshots/latest]
package main

import (
	"flag"
	"log"
	"os"

	"course_hub_backend/internal/config"
	"course_hub_backend/internal/service"
	"course_hub_backend/pkg/database"
	"course_hub_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	dir := flag.String("dir", "", "snapshot directory (defaults to snapshot.dir from the config)")
	flag.Parse()

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to parse config file: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	target := *dir
	if target == "" {
		target = cfg.Snapshot.Dir
	}
	if target == "" {
		log.Fatal("No snapshot directory given: pass -dir or set snapshot.dir in the config")
	}

	if meta, err := service.ReadMetadata(target); err == nil {
		log.Printf("Importing snapshot exported at %s", meta.ExportedAt.Format("2006-01-02 15:04:05"))
	}

	snapshot := service.NewSnapshotService(db)
	result, err := snapshot.Import(target)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	var total int64
	for table, inserted := range result.Inserted {
		log.Printf("  %s: %d inserted", table, inserted)
		total += inserted
	}
	log.Printf("Import finished: %d rows inserted", total)
}
