package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"revloop/internal/llm"
)

func newRawCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "raw <prompt>",
		Short: "Send a single prompt to the configured provider",
		Long: `Send an arbitrary prompt directly to the configured provider and
print the response. Useful for checking credentials and model settings.

Example:
  revloop raw "Summarize the rules of backgammon"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			resp, err := app.Worker.Invoke(cmd.Context(), llm.Request{Prompt: prompt})
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			app.Printer.Info("%s", resp.Content)
			return nil
		},
	}
}
