package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pkordes/masjid-admin/internal/calendar"
)

var todayStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#2E7D32"))

func newCalendarCmd(g *globalFlags) *cobra.Command {
	var (
		clock string
		tz    string
	)

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Print a month of prayer times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			masjidID, err := g.masjidID()
			if err != nil {
				return err
			}
			if clock != "12h" && clock != "24h" {
				return fmt.Errorf("--clock must be 12h or 24h")
			}
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}

			today := now().In(loc)
			m := calendar.MonthOf(today)
			if len(args) == 1 {
				if m, err = calendar.ParseMonth(args[0]); err != nil {
					return err
				}
			}

			c, err := g.client()
			if err != nil {
				return err
			}
			start, end := m.Bounds()
			recs, err := c.List(cmd.Context(), masjidID, start, end)
			if err != nil {
				return err
			}

			renderGrid(cmd.OutOrStdout(), calendar.Assemble(m, recs, today, clock == "24h"))
			return nil
		},
	}
	cmd.Flags().StringVar(&clock, "clock", "24h", "12h or 24h")
	cmd.Flags().StringVar(&tz, "tz", "Local", "IANA time zone used to find today")
	return cmd
}

func renderGrid(w io.Writer, g calendar.Grid) {
	fmt.Fprintln(w, titleStyle.Render(g.Month.Label()))
	if g.Empty {
		fmt.Fprintln(w, g.Message)
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Date", "Hijri", "Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			case row == g.Today:
				return todayStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, d := range g.Days {
		r := d.Row
		asr := slotCell(r.Asr.Slot)
		if r.Asr.Start2 != "" {
			asr += "\n" + r.Asr.Start2 + " " + r.Asr.Start2Label
		}
		t.Row(r.DateLabel, r.Hijri,
			slotCell(r.Fajr), r.Sunrise, slotCell(r.Dhuhr), asr, slotCell(r.Maghrib), slotCell(r.Isha))
	}
	fmt.Fprintln(w, t.Render())

	for _, d := range g.Days {
		for _, warn := range d.Row.Warnings {
			fmt.Fprintln(w, warnStyle.Render(d.Date+": "+warn))
		}
	}
}

// slotCell stacks the jamaat time over the start time.
func slotCell(s calendar.Slot) string {
	return s.Jamaat + "\n" + s.Start
}
