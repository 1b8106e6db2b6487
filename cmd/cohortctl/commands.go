package main

import (
	"os"
	"strconv"
	"strings"

	"clinical-intel/internal/dto"
	"clinical-intel/internal/service"

	"github.com/spf13/cobra"
)

// optionalFloat returns nil unless the flag was set explicitly, so unset
// thresholds fall back to the configuration.
func optionalFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func (c *cli) patientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patient <id|mrn>",
		Short: "Show a patient summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.container.PatientService.Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			resp := dto.NewPatientResponse(d)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderPatient(os.Stdout, resp)
		},
	}
}

func (c *cli) similarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <id|mrn>",
		Short: "List patients similar to the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.container.PatientService.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := c.container.CohortService.FindSimilar(cmd.Context(), p.ID, optionalFloat(cmd, "min-similarity"), optionalInt(cmd, "max-results"))
			if err != nil {
				return err
			}
			resp := dto.NewSimilarPatientsResponse(res)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderSimilar(os.Stdout, resp)
		},
	}
	cmd.Flags().Float64("min-similarity", 0, "minimum cosine similarity in [0,1]")
	cmd.Flags().Int("max-results", 0, "maximum number of patients")
	return cmd
}

func (c *cli) medsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meds <id|mrn>",
		Short: "Medication profile of the similar-patient cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.container.PatientService.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := c.container.CohortService.MedicationProfile(cmd.Context(), p.ID, optionalFloat(cmd, "threshold"))
			if err != nil {
				return err
			}
			resp := dto.NewMedicationProfileResponse(res)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderMedications(os.Stdout, resp)
		},
	}
	cmd.Flags().Float64("threshold", 0, "similarity threshold in [0,1]")
	return cmd
}

func (c *cli) labsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labs <id|mrn>",
		Short: "Compare a patient's latest labs with the cohort",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.container.PatientService.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			res, err := c.container.CohortService.LabComparison(cmd.Context(), p.ID, optionalFloat(cmd, "threshold"))
			if err != nil {
				return err
			}
			resp := dto.NewLabComparisonResponse(res)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderLabs(os.Stdout, resp)
		},
	}
	cmd.Flags().Float64("threshold", 0, "similarity threshold in [0,1]")
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		noteType string
		limit    int
		summary  bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over clinical notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nt, err := service.ParseNoteType(noteType)
			if err != nil {
				return err
			}
			res, err := c.container.SearchService.SearchNotes(cmd.Context(), strings.Join(args, " "), nt, limit)
			if err != nil {
				return err
			}
			if summary {
				res.Summary = c.container.SearchService.Summarize(cmd.Context(), res.Query, res.Hits)
			}
			resp := dto.NewSearchNotesResponse(res)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderSearch(os.Stdout, resp)
		},
	}
	cmd.Flags().StringVar(&noteType, "note-type", "", "restrict to one note type")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses the configured default)")
	cmd.Flags().BoolVar(&summary, "summary", false, "summarize the top notes with the LLM")
	return cmd
}

func (c *cli) extractCmd() *cobra.Command {
	var noteID string
	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract medical terms from text, or from a stored note with --note",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *service.ExtractionResult
				err error
			)
			if noteID != "" {
				id, perr := strconv.ParseInt(noteID, 10, 64)
				if perr != nil {
					return perr
				}
				res, err = c.container.ExtractionService.ExtractNote(cmd.Context(), id)
			} else {
				res, err = c.container.ExtractionService.ExtractText(cmd.Context(), strings.Join(args, " "))
			}
			if err != nil {
				return err
			}
			resp := dto.NewExtractionResponse(res)
			if c.asJSON {
				return writeJSON(os.Stdout, resp)
			}
			return renderExtraction(os.Stdout, resp)
		},
	}
	cmd.Flags().StringVar(&noteID, "note", "", "extract and store the terms of this note")
	return cmd
}

func (c *cli) reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Recompute stale embeddings and extract terms for new notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := c.container.IndexingService.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, dto.NewReindexResponse(report))
		},
	}
}
