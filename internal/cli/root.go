package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the revloop root command with all subcommands
// attached.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "revloop",
		Short: "Bounded iterative LLM workflows",
		Long: `revloop runs supervised multi-stage LLM workflows with bounded
revision loops. Each run executes stages in order, lets a supervisor
route revisions, and forces progress when a revision budget runs out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTranslateCommand(app))
	root.AddCommand(newDesignCommand(app))
	root.AddCommand(newPlanCommand(app))
	root.AddCommand(newRawCommand(app))
	return root
}
