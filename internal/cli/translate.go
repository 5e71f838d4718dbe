package cli

import (
	"github.com/spf13/cobra"

	"revloop/internal/translate"
)

func newTranslateCommand(app *App) *cobra.Command {
	var (
		language  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "translate -l <language> <file>...",
		Short: "Translate documents with assessed revisions",
		Long: `Translate one or more documents into a target language. Each
translation is assessed for readability and revised until the supervisor
accepts it or the revision budget runs out.

Example:
  revloop translate -l French docs/readme.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := translate.NewRunner(app.Config, app.Worker)
			runner.SetPrinter(app.Printer)

			app.Printer.Banner("translate: " + language)
			outcomes, err := runner.RunBatch(cmd.Context(), args, language, outputDir)
			for _, out := range outcomes {
				app.Printer.Success("%s (score %.1f)", out.OutputPath, out.Score)
			}
			if err != nil {
				app.Printer.Failure("%v", err)
				return NewExitError(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "", "target language (required)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "output directory (default from config)")
	cmd.MarkFlagRequired("language")
	return cmd
}
