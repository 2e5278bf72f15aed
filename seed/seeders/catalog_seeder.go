package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/lac-hong-legacy/learnhub/shared"
)

// RecordWriter is the subset of the record store the seeder needs.
type RecordWriter interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// CatalogSeeder writes the default catalog snapshot
type CatalogSeeder struct {
	records RecordWriter
}

// NewCatalogSeeder creates a new catalog seeder
func NewCatalogSeeder(records RecordWriter) *CatalogSeeder {
	return &CatalogSeeder{records: records}
}

// SeedCatalog stores the default courses. An existing catalog is kept unless force is set.
func (s *CatalogSeeder) SeedCatalog(ctx context.Context, force bool) (bool, error) {
	if !force {
		_, exists, err := s.records.Get(ctx, shared.RecordCourses)
		if err != nil {
			return false, fmt.Errorf("failed to check catalog: %w", err)
		}
		if exists {
			log.Println("Catalog already exists, skipping")
			return false, nil
		}
	}

	snapshot, err := shared.MarshalString(DefaultCourses())
	if err != nil {
		return false, err
	}
	if err := s.records.Set(ctx, shared.RecordCourses, snapshot); err != nil {
		return false, fmt.Errorf("failed to write catalog: %w", err)
	}

	log.Printf("Seeded %d courses", len(DefaultCourses()))
	return true, nil
}
