package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"clinical-intel/internal/app"
	"clinical-intel/internal/seed"
	"clinical-intel/pkg/config"
	"clinical-intel/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		patients   int
		seedValue  uint64
		oddLabRate float64
		skipIndex  bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a synthetic pediatric dataset and build its embeddings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(cfg.Logger.Level); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			opts := seed.Options{
				Patients:   patients,
				Seed:       seedValue,
				Start:      time.Now().UTC().AddDate(-1, 0, 0).Truncate(24 * time.Hour),
				OddLabRate: oddLabRate,
			}
			return run(cmd.Context(), cfg, opts, skipIndex, logger.Get())
		},
	}
	cmd.Flags().IntVar(&patients, "patients", 200, "number of synthetic patients")
	cmd.Flags().Uint64Var(&seedValue, "seed", 42, "random seed; the same seed produces the same dataset")
	cmd.Flags().Float64Var(&oddLabRate, "odd-lab-rate", 0.03, "share of lab values stored as non-numeric text")
	cmd.Flags().BoolVar(&skipIndex, "skip-index", false, "load data without computing embeddings and terms")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts seed.Options, skipIndex bool, appLogger *zap.Logger) error {
	container, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer container.Close()

	appLogger.Info("Starting database seeding", zap.Int("patients", opts.Patients), zap.Uint64("seed", opts.Seed))
	ds := seed.Generate(opts)

	for i := range ds.Patients {
		if err := container.PatientRepo.Create(ctx, &ds.Patients[i]); err != nil {
			return fmt.Errorf("failed to create patient %d: %w", ds.Patients[i].ID, err)
		}
	}
	for i := range ds.Encounters {
		if err := container.PatientRepo.CreateEncounter(ctx, &ds.Encounters[i]); err != nil {
			return fmt.Errorf("failed to create encounter %d: %w", ds.Encounters[i].ID, err)
		}
	}
	for i := range ds.Notes {
		if err := container.NoteRepo.Create(ctx, &ds.Notes[i]); err != nil {
			return fmt.Errorf("failed to create note %d: %w", ds.Notes[i].ID, err)
		}
	}
	for i := range ds.Labs {
		if err := container.LabRepo.Create(ctx, &ds.Labs[i]); err != nil {
			return fmt.Errorf("failed to create lab %d: %w", ds.Labs[i].ID, err)
		}
	}
	for i := range ds.Medications {
		if err := container.MedicationRepo.Create(ctx, &ds.Medications[i]); err != nil {
			return fmt.Errorf("failed to create medication order %d: %w", ds.Medications[i].ID, err)
		}
	}
	appLogger.Info("Synthetic data loaded",
		zap.Int("patients", len(ds.Patients)),
		zap.Int("encounters", len(ds.Encounters)),
		zap.Int("notes", len(ds.Notes)),
		zap.Int("labs", len(ds.Labs)),
		zap.Int("medications", len(ds.Medications)),
	)

	if skipIndex {
		return nil
	}
	report, err := container.IndexingService.Reindex(ctx)
	if err != nil {
		return err
	}
	appLogger.Info("Database seeding completed",
		zap.Int("patients_embedded", report.PatientsEmbedded),
		zap.Int("notes_extracted", report.NotesExtracted),
	)
	return nil
}
