package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"workmux/internal/dashboard"
)

var dashboardRefreshSecs int

const dashboardMinWidth = 40

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Open the live agent dashboard",
	Long: `Opens an interactive dashboard listing every live agent with a preview
of the selected pane. Refreshes on a timer and whenever a hook writes a
status update.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			return &ExitError{Code: 1, Message: "dashboard needs a terminal"}
		}
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width < dashboardMinWidth {
			return &ExitError{Code: 1, Message: fmt.Sprintf("terminal too narrow (%d cols, need %d)", width, dashboardMinWidth)}
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := openBackend(cfg)
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}

		refresh := time.Duration(cfg.Dashboard.RefreshSecs) * time.Second
		if cmd.Flags().Changed("refresh") {
			refresh = time.Duration(dashboardRefreshSecs) * time.Second
		}
		if refresh <= 0 {
			refresh = 2 * time.Second
		}

		model := dashboard.New(store, backend, refresh, cfg.Dashboard.PreviewLines)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}

func init() {
	dashboardCmd.Flags().IntVar(&dashboardRefreshSecs, "refresh", 0, "Refresh interval in seconds (default from config)")
	rootCmd.AddCommand(dashboardCmd)
}
