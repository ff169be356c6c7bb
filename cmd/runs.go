package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/smelter-recon/internal/model"
	"github.com/sells-group/smelter-recon/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect comparison run history",
	Long:  "Commands for listing and viewing stored comparison runs and the audit trail.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comparison runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		supplier, _ := cmd.Flags().GetString("supplier")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Supplier: supplier, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
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

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// -- runs audit --

var runsAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent audit events",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := st.ListAudit(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs audit")
		}

		if len(events) == 0 {
			fmt.Fprintln(os.Stderr, "No audit events found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tACTION\tACTOR\tCREATED\tDETAIL")
		for _, e := range events {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncateID(e.ID), e.Action, e.Actor,
				e.CreatedAt.Format("2006-01-02 15:04"), e.Detail)
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("supplier", "", "filter by supplier name")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")

	runsAuditCmd.Flags().Int("limit", 50, "max number of events to display")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsAuditCmd)
	rootCmd.AddCommand(runsCmd)
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.ComparisonRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSUPPLIER\tDECLARED\tCONFORMANT\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t--------\t----------\t-------")

	for _, r := range runs {
		supplier := r.Supplier
		if len(supplier) > 30 {
			supplier = supplier[:27] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d%%\t%s\n",
			truncateID(r.ID),
			supplier,
			r.DeclaredCount,
			r.Summary.ConformantPercent,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
