package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"osmblocks/internal/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Fetch the box and explore the extruded buildings in the terminal",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cmd, filepath.Join(os.TempDir(), "osmblocks.log"))
	if err != nil {
		return err
	}
	defer a.Close()

	m := tui.New(tui.Options{
		Ctx:     ctx,
		Builder: a.pipeline,
		Box:     a.cfg.BBox,
		Scale:   a.cfg.Scale,
		Source:  a.source,
		Logger:  a.log.With("component", "tui"),
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx)).Run(); err != nil {
		a.log.Error("viewer exited", "error", err)
		return err
	}
	return nil
}
