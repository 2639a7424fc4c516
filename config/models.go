package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var defaultModels []byte

// Model describes one configured language model.
type Model struct {
	// Name is the provider-side model identifier.
	Name string `yaml:"name"`
	// Provider names the hosting service.
	Provider string `yaml:"provider"`
	// Temperature for completions. Zero for deterministic stages.
	Temperature float32 `yaml:"temperature"`
}

// ModelRegistry maps model aliases to models and agent names to aliases.
type ModelRegistry struct {
	Models  map[string]Model  `yaml:"llm_models"`
	Agents  map[string]string `yaml:"agent_model_mapping"`
}

// DefaultModelRegistry loads the registry embedded in the binary.
func DefaultModelRegistry() (*ModelRegistry, error) {
	return parseModelRegistry(defaultModels)
}

// LoadModelRegistry reads a model registry from a YAML file on disk.
func LoadModelRegistry(path string) (*ModelRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model registry: %w", err)
	}
	return parseModelRegistry(data)
}

func parseModelRegistry(data []byte) (*ModelRegistry, error) {
	var reg ModelRegistry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse model registry: %w", err)
	}
	if len(reg.Models) == 0 {
		return nil, fmt.Errorf("model registry contains no models")
	}
	return &reg, nil
}

// GetModel returns the full model details for an alias.
func (r *ModelRegistry) GetModel(alias string) (Model, error) {
	model, ok := r.Models[alias]
	if !ok {
		return Model{}, fmt.Errorf("unknown model alias: %s", alias)
	}
	return model, nil
}

// AgentModel returns the model assigned to a logical agent name.
func (r *ModelRegistry) AgentModel(agent string) (Model, error) {
	alias, ok := r.Agents[agent]
	if !ok {
		return Model{}, fmt.Errorf("no model mapped for agent: %s", agent)
	}
	return r.GetModel(alias)
}
