package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/parchment-labs/fundqa/internal/core/domain"
	"github.com/parchment-labs/fundqa/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// Environment variables holding provider secrets. Secrets are read at
// load time and never persisted to the config file.
const (
	EnvOpenAIKey       = "OPENAI_API_KEY"
	EnvHuggingFaceKey  = "HF_API_TOKEN"
	EnvEmbeddingAPIKey = "FUNDQA_EMBEDDING_API_KEY"
	EnvGenerationKey   = "FUNDQA_GENERATION_API_KEY"
)

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// fileSettings is the on-disk TOML shape. It mirrors
// domain.AppSettings with snake_case keys and omits secrets.
type fileSettings struct {
	Chunking struct {
		Size    int `toml:"size"`
		Overlap int `toml:"overlap"`
	} `toml:"chunking"`

	Retrieval struct {
		TopK          int     `toml:"top_k"`
		LexicalWeight float64 `toml:"lexical_weight"`
		DenseWeight   float64 `toml:"dense_weight"`
		MinScore      float64 `toml:"min_score"`
		K1            float64 `toml:"k1"`
		B             float64 `toml:"b"`
	} `toml:"retrieval"`

	Validation struct {
		MinRetrievalScore float64 `toml:"min_retrieval_score"`
		MinAlignment      float64 `toml:"min_alignment"`
	} `toml:"validation"`

	Embedding struct {
		Provider string `toml:"provider"`
		Model    string `toml:"model"`
		BaseURL  string `toml:"base_url"`
	} `toml:"embedding"`

	Generation struct {
		Provider          string  `toml:"provider"`
		Model             string  `toml:"model"`
		BaseURL           string  `toml:"base_url"`
		MaxTokens         int     `toml:"max_tokens"`
		Temperature       float64 `toml:"temperature"`
		RequestsPerMinute int     `toml:"requests_per_minute"`
	} `toml:"generation"`

	Server struct {
		Addr           string `toml:"addr"`
		DocumentsDir   string `toml:"documents_dir"`
		RequestTimeout int    `toml:"request_timeout"`
	} `toml:"server"`

	Storage struct {
		Backend string `toml:"backend"`
		DataDir string `toml:"data_dir"`
	} `toml:"storage"`
}

// NewSettingsStore creates a TOML settings store. If configDir is
// empty, it defaults to ~/.fundqa.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".fundqa")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from the config file, layering file values over
// the defaults and secrets from the environment over both. A missing
// file yields the defaults.
func (s *SettingsStore) Load() (domain.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No config file yet, run on defaults.
	case err != nil:
		return domain.AppSettings{}, fmt.Errorf("reading %s: %w", s.filePath, err)
	default:
		var fs fileSettings
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.AppSettings{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
		}
		applyFile(&settings, fs)
	}

	applyEnv(&settings)

	if err := settings.Validate(); err != nil {
		return domain.AppSettings{}, fmt.Errorf("%s: %w", s.filePath, err)
	}
	return settings, nil
}

// Save persists the settings to the config file. API keys are dropped.
func (s *SettingsStore) Save(settings domain.AppSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fs fileSettings
	fs.Chunking.Size = settings.Chunking.Size
	fs.Chunking.Overlap = settings.Chunking.Overlap
	fs.Retrieval.TopK = settings.Retrieval.TopK
	fs.Retrieval.LexicalWeight = settings.Retrieval.LexicalWeight
	fs.Retrieval.DenseWeight = settings.Retrieval.DenseWeight
	fs.Retrieval.MinScore = settings.Retrieval.MinScore
	fs.Retrieval.K1 = settings.Retrieval.K1
	fs.Retrieval.B = settings.Retrieval.B
	fs.Validation.MinRetrievalScore = settings.Validation.MinRetrievalScore
	fs.Validation.MinAlignment = settings.Validation.MinAlignment
	fs.Embedding.Provider = settings.Embedding.Provider.String()
	fs.Embedding.Model = settings.Embedding.Model
	fs.Embedding.BaseURL = settings.Embedding.BaseURL
	fs.Generation.Provider = settings.Generation.Provider.String()
	fs.Generation.Model = settings.Generation.Model
	fs.Generation.BaseURL = settings.Generation.BaseURL
	fs.Generation.MaxTokens = settings.Generation.MaxTokens
	fs.Generation.Temperature = settings.Generation.Temperature
	fs.Generation.RequestsPerMinute = settings.Generation.RequestsPerMinute
	fs.Server.Addr = settings.Server.Addr
	fs.Server.DocumentsDir = settings.Server.DocumentsDir
	fs.Server.RequestTimeout = settings.Server.RequestTimeout
	fs.Storage.Backend = settings.Storage.Backend
	fs.Storage.DataDir = settings.Storage.DataDir

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	// Restricted permissions even without secrets.
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", s.filePath, err)
	}
	return nil
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// applyFile overlays non-zero file values onto the defaults. Zero
// values mean "not set" so a sparse config file works.
func applyFile(settings *domain.AppSettings, fs fileSettings) {
	if fs.Chunking.Size > 0 {
		settings.Chunking.Size = fs.Chunking.Size
	}
	if fs.Chunking.Overlap > 0 {
		settings.Chunking.Overlap = fs.Chunking.Overlap
	}
	if fs.Retrieval.TopK > 0 {
		settings.Retrieval.TopK = fs.Retrieval.TopK
	}
	if fs.Retrieval.LexicalWeight > 0 {
		settings.Retrieval.LexicalWeight = fs.Retrieval.LexicalWeight
	}
	if fs.Retrieval.DenseWeight > 0 {
		settings.Retrieval.DenseWeight = fs.Retrieval.DenseWeight
	}
	if fs.Retrieval.MinScore > 0 {
		settings.Retrieval.MinScore = fs.Retrieval.MinScore
	}
	if fs.Retrieval.K1 > 0 {
		settings.Retrieval.K1 = fs.Retrieval.K1
	}
	if fs.Retrieval.B > 0 {
		settings.Retrieval.B = fs.Retrieval.B
	}
	if fs.Validation.MinRetrievalScore > 0 {
		settings.Validation.MinRetrievalScore = fs.Validation.MinRetrievalScore
	}
	if fs.Validation.MinAlignment > 0 {
		settings.Validation.MinAlignment = fs.Validation.MinAlignment
	}
	if fs.Embedding.Provider != "" {
		settings.Embedding.Provider = domain.AIProvider(fs.Embedding.Provider)
	}
	if fs.Embedding.Model != "" {
		settings.Embedding.Model = fs.Embedding.Model
	}
	if fs.Embedding.BaseURL != "" {
		settings.Embedding.BaseURL = fs.Embedding.BaseURL
	}
	if fs.Generation.Provider != "" {
		settings.Generation.Provider = domain.AIProvider(fs.Generation.Provider)
	}
	if fs.Generation.Model != "" {
		settings.Generation.Model = fs.Generation.Model
	}
	if fs.Generation.BaseURL != "" {
		settings.Generation.BaseURL = fs.Generation.BaseURL
	}
	if fs.Generation.MaxTokens > 0 {
		settings.Generation.MaxTokens = fs.Generation.MaxTokens
	}
	if fs.Generation.Temperature > 0 {
		settings.Generation.Temperature = fs.Generation.Temperature
	}
	if fs.Generation.RequestsPerMinute > 0 {
		settings.Generation.RequestsPerMinute = fs.Generation.RequestsPerMinute
	}
	if fs.Server.Addr != "" {
		settings.Server.Addr = fs.Server.Addr
	}
	if fs.Server.DocumentsDir != "" {
		settings.Server.DocumentsDir = fs.Server.DocumentsDir
	}
	if fs.Server.RequestTimeout > 0 {
		settings.Server.RequestTimeout = fs.Server.RequestTimeout
	}
	if fs.Storage.Backend != "" {
		settings.Storage.Backend = fs.Storage.Backend
	}
	if fs.Storage.DataDir != "" {
		settings.Storage.DataDir = fs.Storage.DataDir
	}
}

// applyEnv overlays provider secrets from the environment. The
// provider-specific variables win over the generic fundqa ones.
func applyEnv(settings *domain.AppSettings) {
	if key := os.Getenv(EnvEmbeddingAPIKey); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := os.Getenv(EnvGenerationKey); key != "" {
		settings.Generation.APIKey = key
	}
	if key := os.Getenv(EnvOpenAIKey); key != "" {
		if settings.Embedding.Provider == domain.AIProviderOpenAI && settings.Embedding.APIKey == "" {
			settings.Embedding.APIKey = key
		}
		if settings.Generation.Provider == domain.AIProviderOpenAI && settings.Generation.APIKey == "" {
			settings.Generation.APIKey = key
		}
	}
	if key := os.Getenv(EnvHuggingFaceKey); key != "" {
		if settings.Generation.Provider == domain.AIProviderHuggingFace && settings.Generation.APIKey == "" {
			settings.Generation.APIKey = key
		}
	}
}
