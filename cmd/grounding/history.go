// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/pdiddy/grounding/internal/archive"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously asked questions (list, show, search, export)",
	Long: `History manages the local SQLite record of grounded answers written
by ask. Use subcommands to list recent answers, show one in full, search
prompts and answers, or export everything.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent answers, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archive.Open(archiveConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatHistoryOutput(entries, jsonOutput)
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search <query...>",
	Short: "Find answers whose prompt or text contains the query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archive.Open(archiveConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return formatHistoryOutput(entries, jsonOutput)
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an archived answer as Markdown",
	Long: `Show prints the Markdown of an archived answer. With --rerender the
stored raw response is formatted again instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := archive.Open(archiveConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if rerender, _ := cmd.Flags().GetBool("rerender"); rerender {
			_, err = render(&e.Response, os.Stdout)
			return err
		}
		fmt.Printf("# %s\n\n", e.Prompt)
		fmt.Println(e.Markdown)
		return nil
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		store, err := archive.Open(archiveConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml", "":
			if output == "" {
				output = "grounding-history.yaml"
			}
			if err := store.ExportYAML(cmd.Context(), output); err != nil {
				return err
			}
		case "json":
			if output == "" {
				output = "grounding-history.json"
			}
			if err := store.ExportJSON(cmd.Context(), output); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}

		fmt.Printf("Exported to %s\n", output)
		return nil
	},
}

func formatHistoryOutput(entries []archive.Entry, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No answers found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-16s  %-7s  %s\n", "ID", "Asked", "Sources", "Prompt")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for _, e := range entries {
		prompt := truncate(e.Prompt, 45)
		fmt.Fprintf(os.Stdout, "%-36s  %-16s  %-7d  %s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), len(e.Sources), prompt)
	}

	fmt.Fprintf(os.Stdout, "\n%d answers\n", len(entries))
	return nil
}

// truncate shortens s to at most n bytes, ending with "..." when cut.
// The cut never splits a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum answers (0 = use default)")
	historyListCmd.Flags().Bool("json", false, "output answers as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum answers (0 = use default)")
	historySearchCmd.Flags().Bool("json", false, "output answers as JSON")

	historyShowCmd.Flags().Bool("rerender", false, "format the stored raw response again")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "output file (default grounding-history.<format>)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
