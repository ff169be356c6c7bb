package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/smelter-recon/internal/ingest"
	"github.com/sells-group/smelter-recon/internal/model"
	"github.com/sells-group/smelter-recon/internal/recon"
)

var (
	compareSupplier  string
	compareSheet     string
	compareStandards []string
	compareOutput    string
	compareNoSave    bool
)

// compareResult is the printable payload of one comparison.
type compareResult struct {
	RunID    string                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Supplier string                  `json:"supplier" yaml:"supplier"`
	Summary  model.ComparisonSummary `json:"summary" yaml:"summary"`
	Outcomes []model.MatchOutcome    `json:"outcomes" yaml:"outcomes"`
}

var compareCmd = &cobra.Command{
	Use:   "compare <declared-file>",
	Short: "Reconcile a supplier's declared facilities against the reference set",
	Long:  "Reads declared smelters/refineries from an XLSX or CSV file, matches each against the imported reference lists, classifies conformance, and prints a summary plus per-facility outcomes.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		declared, err := readDeclared(args[0], compareSheet)
		if err != nil {
			return err
		}
		if len(declared) == 0 {
			return eris.Errorf("no declared facilities found in %s", args[0])
		}

		standards, err := parseStandards(compareStandards)
		if err != nil {
			return err
		}

		refs, err := st.ListReference(ctx, standards)
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			return eris.New(`reference set is empty; run "smelter-recon reference import" first`)
		}

		index := recon.BuildIndex(refs)
		engine := recon.NewEngine(index, recon.Options{
			FuzzyFloor:   cfg.Recon.FuzzyFloor,
			ClassifyGate: cfg.Recon.ClassifyGate,
			Workers:      cfg.Recon.Workers,
		})

		outcomes, err := engine.Compare(ctx, compareSupplier, declared)
		if err != nil {
			return eris.Wrap(err, "compare")
		}
		summary := recon.Summarize(outcomes, index.Standards(), metalsOf(declared))

		result := compareResult{
			Supplier: compareSupplier,
			Summary:  summary,
			Outcomes: outcomes,
		}

		if !compareNoSave {
			run, err := st.CreateRun(ctx, compareSupplier, summary, outcomes)
			if err != nil {
				return err
			}
			result.RunID = run.ID

			detail, _ := json.Marshal(map[string]any{
				"run_id":   run.ID,
				"supplier": compareSupplier,
				"declared": len(declared),
			})
			if err := st.RecordAudit(ctx, model.AuditComparisonRun, "cli", string(detail)); err != nil {
				zap.L().Warn("audit record failed", zap.Error(err))
			}
		}

		zap.L().Info("comparison complete",
			zap.String("supplier", compareSupplier),
			zap.Int("declared", len(declared)),
			zap.Int("conformant_percent", summary.ConformantPercent),
		)

		return writeResult(os.Stdout, result, compareOutput)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareSupplier, "supplier", "", "supplier name attributed to the submission (required)")
	compareCmd.Flags().StringVar(&compareSheet, "sheet", "", "XLSX sheet name (default first sheet)")
	compareCmd.Flags().StringSliceVar(&compareStandards, "standards", nil, "standards to reconcile against (default all imported)")
	compareCmd.Flags().StringVar(&compareOutput, "output", "table", "output format: table, json, yaml")
	compareCmd.Flags().BoolVar(&compareNoSave, "no-save", false, "skip persisting the run")
	_ = compareCmd.MarkFlagRequired("supplier")
	rootCmd.AddCommand(compareCmd)
}

// readDeclared loads declared facilities from an XLSX or CSV file, chosen by
// extension.
func readDeclared(path, sheet string) ([]model.DeclaredFacility, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		return ingest.DeclaredFromXLSX(path, ingest.XLSXOptions{SheetName: sheet})
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close()
		return ingest.DeclaredFromCSV(f)
	default:
		return nil, eris.Errorf("unsupported file type: %s (want .xlsx or .csv)", path)
	}
}

// parseStandards validates standard names against the known set.
func parseStandards(names []string) ([]model.Standard, error) {
	if len(names) == 0 {
		return nil, nil
	}
	known := model.KnownStandards()
	out := make([]model.Standard, 0, len(names))
	for _, name := range names {
		std := model.Standard(strings.ToUpper(strings.TrimSpace(name)))
		found := false
		for _, k := range known {
			if std == k {
				found = true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("unknown standard %q (want one of %v)", name, known)
		}
		out = append(out, std)
	}
	return out, nil
}

// metalsOf returns the distinct canonical metals in the declared set, in
// first-seen order.
func metalsOf(declared []model.DeclaredFacility) []string {
	seen := make(map[string]bool, len(declared))
	var out []string
	for _, d := range declared {
		metal := ingest.CanonicalMetal(d.Metal)
		if metal == "" || seen[metal] {
			continue
		}
		seen[metal] = true
		out = append(out, metal)
	}
	return out
}

func writeResult(out io.Writer, result compareResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		data, err := yaml.Marshal(result)
		if err != nil {
			return eris.Wrap(err, "marshal yaml")
		}
		_, err = out.Write(data)
		return err
	case "table":
		formatCompareTable(out, result)
		return nil
	default:
		return eris.Errorf("unknown output format: %s", format)
	}
}

// formatCompareTable writes a human-readable summary and outcome list to out.
func formatCompareTable(out io.Writer, result compareResult) {
	s := result.Summary

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Supplier:\t%s\n", result.Supplier)
	if result.RunID != "" {
		_, _ = fmt.Fprintf(w, "Run:\t%s\n", result.RunID)
	}
	_, _ = fmt.Fprintf(w, "Facilities checked:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Conformant:\t%d (%d%%)\n", s.ByStatus[model.StatusConformant], s.ConformantPercent)
	_, _ = fmt.Fprintf(w, "Active:\t%d\n", s.ByStatus[model.StatusActive])
	_, _ = fmt.Fprintf(w, "Non-conformant:\t%d\n", s.ByStatus[model.StatusNonConformant])
	_, _ = fmt.Fprintf(w, "Attention required:\t%d\n", s.ByStatus[model.StatusAttentionRequired])
	_ = w.Flush()

	if len(s.Metals) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "METAL\tTOTAL\tCONFORMANT\tPERCENT")
		for _, m := range s.Metals {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", m.Metal, m.Total, m.Conformant, m.ConformantPercent)
		}
		_ = w.Flush()
	}

	if len(s.Standards) > 0 {
		_, _ = fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STANDARD\tCONFORMANT\tTOTAL\tPERCENT")
		for _, sb := range s.Standards {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", sb.Standard, sb.Conformant, sb.Total, sb.ConformantPercent)
		}
		_ = w.Flush()
	}

	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "METAL\tDECLARED NAME\tTIER\tCONFIDENCE\tMATCHED\tSTATUS")
	for _, o := range result.Outcomes {
		conf := ""
		if o.Confidence != nil {
			conf = fmt.Sprintf("%.2f", *o.Confidence)
		}
		matched := ""
		if o.Matched != nil {
			matched = o.Matched.StandardName
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Declared.Metal, o.Declared.Name, o.Tier, conf, matched, o.Status)
	}
	_ = w.Flush()
}
