// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/grounding/internal/archive"
	"github.com/pdiddy/grounding/internal/cite"
	"github.com/pdiddy/grounding/internal/gemini"
	"github.com/pdiddy/grounding/internal/secrets"
	"github.com/pdiddy/grounding/internal/transcript"
	"github.com/pdiddy/grounding/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Ask a grounded question and print the answer with sources",
	Long: `Ask sends the prompt to the configured Gemini model with a grounding
tool attached: Google Search by default, or a Vertex AI Search datastore
when --datastore is set. The answer is printed as Markdown with footnote
markers after each grounded span and a list of grounding sources.

The gemini backend needs an API key (config ai.api_key, GROUNDING_AI_API_KEY,
GEMINI_API_KEY, or .secrets/gemini-api-key). The vertex backend uses
Application Default Credentials and needs --project.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("model", gemini.DefaultModel, "model identifier")
	askCmd.Flags().String("backend", string(types.BackendGemini), "API backend: gemini or vertex")
	askCmd.Flags().String("project", "", "Google Cloud project (vertex backend)")
	askCmd.Flags().String("location", gemini.DefaultLocation, "Google Cloud location (vertex backend)")
	askCmd.Flags().String("datastore", "", "Vertex AI Search datastore to ground on instead of Google Search")
	askCmd.Flags().String("system", "", "system instruction sent with the prompt")
	askCmd.Flags().Float32("temperature", 0, "sampling temperature (model default when unset)")
	askCmd.Flags().String("save", "", "also save the prompt and raw response to this .yaml or .json file")
	askCmd.Flags().Bool("no-archive", false, "do not record the answer in the history")

	viper.BindPFlag("ai.model", askCmd.Flags().Lookup("model"))
	viper.BindPFlag("ai.backend", askCmd.Flags().Lookup("backend"))
	viper.BindPFlag("ai.project", askCmd.Flags().Lookup("project"))
	viper.BindPFlag("ai.location", askCmd.Flags().Lookup("location"))
	viper.BindPFlag("ai.datastore", askCmd.Flags().Lookup("datastore"))
	viper.BindPFlag("ai.system_instruction", askCmd.Flags().Lookup("system"))

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	cfg := aiConfig(cmd)

	client, err := gemini.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"model": client.Model(),
		"tool":  client.Tool(),
	}).Debug("asking")

	resp, err := client.Ask(cmd.Context(), prompt)
	if err != nil {
		return err
	}

	markdown, err := render(resp, os.Stdout)
	if err != nil {
		return err
	}

	savePath, _ := cmd.Flags().GetString("save")
	if savePath != "" {
		t := transcript.Transcript{
			Prompt:    prompt,
			Model:     client.Model(),
			Tool:      string(client.Tool()),
			Response:  *resp,
			Timestamp: time.Now(),
		}
		if err := transcript.Write(savePath, t); err != nil {
			return err
		}
		logrus.Infof("saved transcript to %s", savePath)
	}

	noArchive, _ := cmd.Flags().GetBool("no-archive")
	if !noArchive {
		recordAnswer(cmd.Context(), archive.Entry{
			Prompt:   prompt,
			Model:    client.Model(),
			Tool:     string(client.Tool()),
			Response: *resp,
			Markdown: markdown,
		})
	}
	return nil
}

// aiConfig assembles model settings from viper, flags, the environment,
// and loaded secrets.
func aiConfig(cmd *cobra.Command) types.AIConfig {
	cfg := types.AIConfig{
		Model:             viper.GetString("ai.model"),
		Backend:           types.Backend(viper.GetString("ai.backend")),
		Project:           viper.GetString("ai.project"),
		Location:          viper.GetString("ai.location"),
		Datastore:         viper.GetString("ai.datastore"),
		SystemInstruction: viper.GetString("ai.system_instruction"),
	}

	apiKey := viper.GetString("ai.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cfg.APIKey = secretDefault(secrets.GeminiAPIKey, apiKey)

	if cfg.Backend == types.BackendVertex && cfg.Project == "" {
		cfg.Project = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}

	if cmd.Flags().Changed("temperature") {
		temp, _ := cmd.Flags().GetFloat32("temperature")
		cfg.Temperature = &temp
	} else if viper.IsSet("ai.temperature") {
		temp := float32(viper.GetFloat64("ai.temperature"))
		cfg.Temperature = &temp
	}
	return cfg
}

// render writes the Markdown for resp to w and returns it. Chunks left out
// of the bibliography are logged.
func render(resp *types.ModelResponse, w io.Writer) (string, error) {
	res, err := cite.Render(resp)
	if err != nil {
		return "", err
	}
	for _, pos := range res.Skipped {
		logrus.Debugf("skipping grounding chunk %d: no web or retrieved-context source", pos)
	}
	if _, err := fmt.Fprintln(w, res.Markdown); err != nil {
		return "", fmt.Errorf("writing answer: %w", err)
	}
	return res.Markdown, nil
}

// recordAnswer archives e. The answer is already printed, so a failure is
// only logged.
func recordAnswer(ctx context.Context, e archive.Entry) {
	store, err := archive.Open(archiveConfig())
	if err != nil {
		logrus.WithError(err).Warn("answer not archived")
		return
	}
	defer store.Close()

	id, err := store.Record(ctx, e)
	if err != nil {
		logrus.WithError(err).Warn("answer not archived")
		return
	}
	logrus.WithField("id", id).Info("archived answer")
}
