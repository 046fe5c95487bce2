// Dumps every table to a directory of per-table JSON array files plus a
// metadata.json describing the export.
//
// Usage: go run ./scripts/export_data [-dir snapshots/latest]
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
	dir := flag.String("dir", "", "target directory (defaults to snapshot.dir from the config)")
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

	db, err := database.InitDB(&cfg.Database, false)
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

	snapshot := service.NewSnapshotService(db)
	meta, err := snapshot.Export(target)
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	total := 0
	for table, count := range meta.Tables {
		log.Printf("  %s: %d rows", table, count)
		total += count
	}
	log.Printf("Export finished: %d rows written to %s", total, target)
}
