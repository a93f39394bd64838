package internal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type EmbeddingsConfig struct {
	Backend   string `yaml:"backend"`
	Dimension int    `yaml:"dimension"`
}

type IndexConfig struct {
	Backend     string `yaml:"backend"`
	Metric      string `yaml:"metric"`
	Normalize   bool   `yaml:"normalize"`
	Spec        string `yaml:"spec,omitempty"`
	BatchSize   int    `yaml:"batch_size"`
	Accelerator bool   `yaml:"accelerator,omitempty"`
}

type OptimizerConfig struct {
	Name     string  `yaml:"name"`
	Seed     uint64  `yaml:"seed"`
	Samples  int     `yaml:"samples"`
	K        int     `yaml:"k"`
	Steps    int     `yaml:"steps"`
	Patience int     `yaml:"patience"`
	Scale    float64 `yaml:"scale,omitempty"`
}

type AdaptorConfig struct {
	Name        string `yaml:"name"`
	PromptField string `yaml:"prompt_field"`
	AnswerField string `yaml:"answer_field"`
	MaxOrder    int    `yaml:"max_order,omitempty"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model"`
}

type Config struct {
	Embeddings      EmbeddingsConfig          `yaml:"embeddings"`
	Index           IndexConfig               `yaml:"index"`
	Optimizer       OptimizerConfig           `yaml:"optimizer"`
	Adaptor         AdaptorConfig             `yaml:"adaptor"`
	Providers       map[string]ProviderConfig `yaml:"providers,omitempty"`
	DefaultProvider string                    `yaml:"default_provider,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Embeddings: EmbeddingsConfig{
			Backend:   "hash",
			Dimension: 256,
		},
		Index: IndexConfig{
			Backend:   string(BackendFlat),
			Metric:    string(DistanceInnerProduct),
			Normalize: true,
			BatchSize: 64,
		},
		Optimizer: OptimizerConfig{
			Name:     "sweep",
			Samples:  4,
			K:        3,
			Steps:    32,
			Patience: 4,
		},
		Adaptor: AdaptorConfig{
			Name:        "exact-match",
			PromptField: "question",
			AnswerField: "answer",
		},
		Providers: make(map[string]ProviderConfig),
	}
}

func LoadConfig(ws Workspace) (*Config, error) {
	path := ws.ConfigPath()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}

	return &cfg, nil
}

func SaveConfig(ws Workspace, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	if err := os.WriteFile(ws.ConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}
