package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"revloop/internal/design"
	"revloop/internal/translate"
	"revloop/internal/workflow"
)

func newPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <workflow>",
		Short: "Show a workflow's stages without running it",
		Long: `Print a workflow's canonical stage order, the supervisor actions,
and the revision budgets. Nothing is executed.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"translate", "design"},
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := definitionFor(app, args[0])
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}

			app.Printer.Banner("workflow: " + def.Name)
			for _, stage := range def.Stages() {
				spec, _ := def.Spec(stage)
				line := fmt.Sprintf("%-16s action=%-16s next=%s", stage, spec.Action, spec.Next)
				if spec.MaxRevisions > 0 {
					line += fmt.Sprintf("  max_revisions=%d", spec.MaxRevisions)
				}
				app.Printer.Info("  %s", line)
			}
			app.Printer.Info("  terminal=%s final=%s fallback=%s", def.Terminal, def.Final, def.Fallback)
			return nil
		},
	}
}

func definitionFor(app *App, name string) (*workflow.Definition, error) {
	wf := app.Config.Workflow(name)
	switch name {
	case "translate":
		return translate.Definition(wf.MaxRevisions)
	case "design":
		return design.Definition(wf.MaxRevisions)
	default:
		return nil, fmt.Errorf("unknown workflow %q (want translate or design)", name)
	}
}
