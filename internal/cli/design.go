package cli

import (
	"github.com/spf13/cobra"

	"revloop/internal/design"
)

func newDesignCommand(app *App) *cobra.Command {
	var job design.Job

	cmd := &cobra.Command{
		Use:   "design --theme <theme>",
		Short: "Design a board game from a brief",
		Long: `Design a complete board game: plan, theme research, mechanics,
playtesting, fact checking, art direction, and a final design document.
The supervisor may send earlier stages back for revision within their
budgets.

Example:
  revloop design --theme "Hanseatic trade routes" --players 2-4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := design.NewRunner(app.Config, app.Worker)
			runner.SetPrinter(app.Printer)

			app.Printer.Banner("design: " + job.Theme)
			out, err := runner.Run(cmd.Context(), job)
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			app.Printer.Success("%s (%d passes)", out.DocumentPath, out.Result.Passes)
			return nil
		},
	}

	cmd.Flags().StringVar(&job.Theme, "theme", "", "game theme (required)")
	cmd.Flags().StringVar(&job.Players, "players", "2-4", "player count")
	cmd.Flags().StringVar(&job.Complexity, "complexity", "medium", "target complexity")
	cmd.Flags().StringVar(&job.Notes, "notes", "", "free-form design constraints")
	cmd.Flags().StringVarP(&job.OutputDir, "output-dir", "o", "", "output directory (default from config)")
	cmd.MarkFlagRequired("theme")
	return cmd
}
