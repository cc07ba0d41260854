package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding/internal/cite"
	"github.com/pdiddy/grounding/internal/transcript"
)

var formatCmd = &cobra.Command{
	Use:   "format <transcript>",
	Short: "Render a saved transcript as Markdown",
	Long: `Format reads a transcript written by "ask --save" (YAML or JSON) and
prints the answer with footnote markers and grounding sources, without
calling the model.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := transcript.Read(args[0])
		if err != nil {
			return err
		}
		_, err = render(&t.Response, os.Stdout)
		return err
	},
}

var sourcesCmd = &cobra.Command{
	Use:   "sources <transcript>",
	Short: "Print the grounding sources of a saved transcript as CSL-YAML",
	Long: `Sources writes the web pages and documents cited by a saved transcript
as a CSL-YAML list. Item IDs match the footnote numbers, so the output can
be handed to Pandoc or a reference manager.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := transcript.Read(args[0])
		if err != nil {
			return err
		}
		return cite.WriteCSL(&t.Response, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(sourcesCmd)
}
