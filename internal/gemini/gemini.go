// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gemini sends prompts to a Gemini model with a grounding tool
// enabled and converts the SDK response into a types.ModelResponse.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/grounding/pkg/types"
)

// DefaultModel is used when AIConfig.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// DefaultLocation is used for the vertex backend when AIConfig.Location is empty.
const DefaultLocation = "us-central1"

// ErrNoCandidates is returned when the model produced no answer candidate.
var ErrNoCandidates = errors.New("response has no candidates")

// Tool names the grounding tool attached to a request.
type Tool string

const (
	ToolGoogleSearch   Tool = "google_search"
	ToolVertexAISearch Tool = "vertex_ai_search"
)

// Generator abstracts the SDK's content generation so tests can supply a
// fake. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client asks grounded questions of one model.
type Client struct {
	gen Generator
	cfg types.AIConfig
}

// New creates a Client backed by the Gemini API or Vertex AI, depending on
// cfg.Backend. The vertex backend authenticates with Application Default
// Credentials (GOOGLE_APPLICATION_CREDENTIALS or gcloud login).
func New(ctx context.Context, cfg types.AIConfig) (*Client, error) {
	cc, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return NewWithGenerator(client.Models, cfg), nil
}

// NewWithGenerator creates a Client around an existing Generator.
func NewWithGenerator(gen Generator, cfg types.AIConfig) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return &Client{gen: gen, cfg: cfg}
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Tool returns the grounding tool requests carry.
func (c *Client) Tool() Tool {
	if c.cfg.Datastore != "" {
		return ToolVertexAISearch
	}
	return ToolGoogleSearch
}

// Ask sends one prompt with the grounding tool and returns the first
// candidate. The call is made once; failures are returned as-is.
func (c *Client) Ask(ctx context.Context, prompt string) (*types.ModelResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is empty")
	}

	resp, err := c.gen.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), c.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("generating content with %s: %w", c.cfg.Model, err)
	}
	return ToModelResponse(resp)
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Tools:       []*genai.Tool{c.groundingTool()},
		Temperature: c.cfg.Temperature,
	}
	if c.cfg.SystemInstruction != "" {
		gc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: c.cfg.SystemInstruction}},
		}
	}
	return gc
}

func (c *Client) groundingTool() *genai.Tool {
	if c.Tool() == ToolVertexAISearch {
		return &genai.Tool{
			Retrieval: &genai.Retrieval{
				VertexAISearch: &genai.VertexAISearch{Datastore: c.cfg.Datastore},
			},
		}
	}
	return &genai.Tool{GoogleSearch: &genai.GoogleSearch{}}
}

// clientConfig validates cfg and maps it onto the SDK's client settings.
func clientConfig(cfg types.AIConfig) (*genai.ClientConfig, error) {
	switch cfg.Backend {
	case types.BackendGemini, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend requires an API key (set ai.api_key, GROUNDING_AI_API_KEY, GEMINI_API_KEY, or .secrets/gemini-api-key)")
		}
		if cfg.Datastore != "" {
			return nil, fmt.Errorf("datastore grounding requires the vertex backend")
		}
		return &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}, nil
	case types.BackendVertex:
		if cfg.Project == "" {
			return nil, fmt.Errorf("vertex backend requires a project")
		}
		location := cfg.Location
		if location == "" {
			location = DefaultLocation
		}
		return &genai.ClientConfig{
			Project:  cfg.Project,
			Location: location,
			Backend:  genai.BackendVertexAI,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported backend %q: use gemini or vertex", cfg.Backend)
	}
}
