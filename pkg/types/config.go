package types

// Backend selects which hosted API serves model calls.
type Backend string

const (
	// BackendGemini is the Gemini Developer API, authenticated by API key.
	BackendGemini Backend = "gemini"

	// BackendVertex is Vertex AI, authenticated by Application Default
	// Credentials and scoped to a project and location.
	BackendVertex Backend = "vertex"
)

// AIConfig holds settings for calls to the generative model.
type AIConfig struct {
	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// Backend selects gemini or vertex.
	Backend Backend `json:"backend" yaml:"backend"`

	// APIKey authenticates against the Gemini API backend.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Project is the Google Cloud project for the vertex backend.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// Location is the Google Cloud region for the vertex backend (e.g. "us-central1").
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Datastore is a Vertex AI Search datastore resource name. When set,
	// answers are grounded on it instead of Google Search.
	Datastore string `json:"datastore,omitempty" yaml:"datastore,omitempty"`

	// SystemInstruction is sent with every prompt when non-empty.
	SystemInstruction string `json:"system_instruction,omitempty" yaml:"system_instruction,omitempty"`

	// Temperature overrides the model default when non-nil.
	Temperature *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// ArchiveConfig holds settings for the answer history database.
type ArchiveConfig struct {
	// Dir is the directory holding grounding.db.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default number of rows for list and search (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is a logrus level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// File, when set, receives a copy of the log with size-based rotation.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// Config groups every configuration section.
type Config struct {
	AI      AIConfig      `json:"ai" yaml:"ai"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
