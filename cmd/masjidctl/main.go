// Command masjidctl is the operator CLI for the masjid admin API: it mints
// admin tokens, dry-runs or submits timetable imports and prints a month of
// prayer times in the terminal.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pkordes/masjid-admin/internal/client"
)

// now is replaced in tests.
var now = time.Now

type globalFlags struct {
	server  string
	token   string
	masjid  string
	timeout time.Duration
}

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "masjidctl",
		Short:         "Manage masjid prayer times from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&g.server, "server", envOr("MASJIDCTL_SERVER", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("MASJIDCTL_TOKEN"), "bearer token (see the token command)")
	root.PersistentFlags().StringVarP(&g.masjid, "masjid", "m", os.Getenv("MASJIDCTL_MASJID"), "masjid id")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 30*time.Second, "HTTP timeout")

	root.AddCommand(newTokenCmd(), newImportCmd(g), newCalendarCmd(g))
	return root
}

func (g *globalFlags) masjidID() (uuid.UUID, error) {
	if g.masjid == "" {
		return uuid.Nil, fmt.Errorf("--masjid is required")
	}
	id, err := uuid.Parse(g.masjid)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--masjid: %w", err)
	}
	return id, nil
}

func (g *globalFlags) client() (*client.Client, error) {
	if g.token == "" {
		return nil, fmt.Errorf("--token or MASJIDCTL_TOKEN is required")
	}
	return client.New(g.server, g.token, g.timeout), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
