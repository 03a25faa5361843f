package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"accreditation-backend/internal/bootstrap"
	"accreditation-backend/internal/config"
	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
	"accreditation-backend/internal/repository/firestore"
)

// SeedData is the reference data loaded into Firestore for a new environment
type SeedData struct {
	Matchdays []domain.Matchday  `yaml:"matchdays"`
	Areas     []domain.Reference `yaml:"areas"`
	Functions []domain.Reference `yaml:"functions"`
	Companies []domain.Reference `yaml:"companies"`
}

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	seedFile := flag.String("data", "cmd/seed/seed.yaml", "Path to seed data file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	data, err := readSeedFile(*seedFile)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	ctx := context.Background()
	app, err := bootstrap.NewFirebaseApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize firebase: %v", err)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatalf("Failed to create firestore client: %v", err)
	}
	defer fsClient.Close()

	store := firestore.NewStore(fsClient, cfg.Trigger.Collection)
	if err := populate(ctx, store.MatchdayRepository, store.ReferenceRepository, data); err != nil {
		log.Fatalf("Failed to populate data: %v", err)
	}
	logger.Info("Seed data populated",
		"matchdays", len(data.Matchdays),
		"areas", len(data.Areas),
		"functions", len(data.Functions),
		"companies", len(data.Companies),
	)
}

func readSeedFile(filename string) (*SeedData, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, err
	}

	active := 0
	for _, m := range data.Matchdays {
		if m.ID == "" {
			return nil, fmt.Errorf("matchday %d has no id", m.Number)
		}
		if m.Active {
			active++
		}
	}
	if active > 1 {
		return nil, fmt.Errorf("%d matchdays are flagged active, expected at most one", active)
	}
	return &data, nil
}

func populate(ctx context.Context, matchdays repository.MatchdayRepository, refs repository.ReferenceRepository, data *SeedData) error {
	for i := range data.Matchdays {
		m := &data.Matchdays[i]
		if err := matchdays.Upsert(ctx, m); err != nil {
			return fmt.Errorf("failed to upsert matchday %s: %w", m.ID, err)
		}
	}

	groups := []struct {
		kind domain.ReferenceKind
		refs []domain.Reference
	}{
		{domain.ReferenceArea, data.Areas},
		{domain.ReferenceFunction, data.Functions},
		{domain.ReferenceCompany, data.Companies},
	}
	for _, g := range groups {
		for i := range g.refs {
			ref := &g.refs[i]
			if ref.ID == "" {
				return fmt.Errorf("%s %q has no id", g.kind, ref.Name)
			}
			if err := refs.Upsert(ctx, g.kind, ref); err != nil {
				return fmt.Errorf("failed to upsert %s %s: %w", g.kind, ref.ID, err)
			}
		}
	}
	return nil
}
