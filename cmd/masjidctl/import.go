package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pkordes/masjid-admin/internal/csvimport"
	"github.com/pkordes/masjid-admin/internal/domain"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var (
		mapping map[string]string
		suggest bool
		submit  bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Check a CSV or XLSX timetable and optionally upload it",
		Long: "Parses the file, applies the column mapping and prints the review\n" +
			"summary. Nothing is written unless --submit is given.\n\n" +
			"Required fields: " + strings.Join(domain.RequiredImportFields, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			masjidID, err := g.masjidID()
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			sess := csvimport.NewSession(masjidID, now())
			if err := sess.Upload(f, filepath.Base(args[0])); err != nil {
				if sess.Error != "" {
					return errors.New(sess.Error)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if sess.Step == csvimport.StepMapping {
				if err := applyMapping(sess, mapping, suggest); err != nil {
					return err
				}
				if err := sess.Continue(); err != nil {
					fmt.Fprintf(out, "Unmapped fields: %s\n", strings.Join(sess.Unmapped(), ", "))
					fmt.Fprintf(out, "File headers:    %s\n", strings.Join(sess.Headers, ", "))
					return fmt.Errorf("map the fields with --map field=header or try --suggest: %w", err)
				}
			}

			sum, err := sess.Review()
			if err != nil {
				return err
			}
			renderSummary(out, sess, sum)

			if !submit {
				fmt.Fprintln(out, "Dry run; pass --submit to write these rows.")
				return nil
			}

			c, err := g.client()
			if err != nil {
				return err
			}
			rows, err := sess.Project()
			if err != nil {
				return err
			}
			res, err := c.BatchCreate(cmd.Context(), masjidID, rows)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Uploaded %d prayer times (%s to %s).\n", res.Count, res.StartDate, res.EndDate)
			return nil
		},
	}
	cmd.Flags().StringToStringVar(&mapping, "map", nil, "field=header assignments, e.g. --map fajr_start=Fajr")
	cmd.Flags().BoolVar(&suggest, "suggest", false, "accept suggested headers for unmapped fields")
	cmd.Flags().BoolVar(&submit, "submit", false, "write the rows through the API")
	return cmd
}

// applyMapping applies suggestions first so explicit --map values win.
func applyMapping(sess *csvimport.Session, explicit map[string]string, suggest bool) error {
	if suggest {
		for field, header := range sortedPairs(sess.Suggest()) {
			if err := sess.Assign(field, header); err != nil {
				return err
			}
		}
	}
	for field, header := range sortedPairs(explicit) {
		if err := sess.Assign(field, header); err != nil {
			return err
		}
	}
	return nil
}

func sortedPairs(m map[string]string) func(func(string, string) bool) {
	return func(yield func(string, string) bool) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !yield(k, m[k]) {
				return
			}
		}
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func renderSummary(w io.Writer, sess *csvimport.Session, sum csvimport.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Review "+sess.Filename))
	fmt.Fprintf(w, "%s %d\n", labelStyle.Render("Rows:"), sum.Total)
	if sum.DateRange != nil {
		fmt.Fprintf(w, "%s %s to %s\n", labelStyle.Render("Dates:"), sum.DateRange.Min, sum.DateRange.Max)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("date", "fajr", "sunrise", "dhuhr", "asr", "maghrib", "isha")
	for _, in := range sum.Preview {
		t.Row(in.Date,
			pair(in.FajrStart, in.FajrJammat),
			in.Sunrise,
			pair(in.DhurStart, in.DhurJammat),
			pair(in.AsrStart, in.AsrJammat),
			pair(in.MagribStart, in.MagribJammat),
			pair(in.IshaStart, in.IshaJammat),
		)
	}
	fmt.Fprintln(w, t.Render())
	if sum.Total > len(sum.Preview) {
		fmt.Fprintf(w, "... and %d more\n", sum.Total-len(sum.Preview))
	}

	for _, warn := range sum.Warnings {
		fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("row %d: %s", warn.Row, warn.Message)))
	}
}

func pair(start, jamaat string) string {
	if start == "" && jamaat == "" {
		return ""
	}
	return start + " / " + jamaat
}
