// Package prompt holds the YAML-backed prompt registry used by the
// model-calling pipeline stages.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultRegistry []byte

// Definition is a raw prompt entry as stored in the registry.
type Definition struct {
	// System is the system message sent verbatim.
	System string `yaml:"system"`
	// Template is the user message with {placeholder} variables.
	Template string `yaml:"template"`
	// OutputSchema describes the JSON object the model must return.
	OutputSchema string `yaml:"output_schema"`
}

// Prompt is a rendered instruction bundle ready for a model call.
type Prompt struct {
	System       string
	User         string
	OutputSchema string
}

// Registry maps prompt names to their definitions.
type Registry struct {
	prompts map[string]Definition
}

type registryFile struct {
	Prompts map[string]Definition `yaml:"prompts"`
}

// DefaultRegistry loads the registry embedded in the binary.
func DefaultRegistry() (*Registry, error) {
	return parseRegistry(defaultRegistry)
}

// LoadRegistry reads a registry from a YAML file on disk.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt registry: %w", err)
	}
	return parseRegistry(data)
}

func parseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt registry: %w", err)
	}
	if len(file.Prompts) == 0 {
		return nil, fmt.Errorf("prompt registry contains no prompts")
	}
	return &Registry{prompts: file.Prompts}, nil
}

// Names returns the registered prompt names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.prompts))
	for name := range r.prompts {
		names = append(names, name)
	}
	return names
}

// Render fills the named prompt's template placeholders with the given
// variables and returns the instruction bundle. Unknown prompt names are an
// error; unknown placeholders are left untouched so they surface in review.
func (r *Registry) Render(name string, vars map[string]string) (Prompt, error) {
	def, ok := r.prompts[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", name)
	}

	user := def.Template
	for key, value := range vars {
		user = strings.ReplaceAll(user, "{"+key+"}", value)
	}

	return Prompt{
		System:       def.System,
		User:         user,
		OutputSchema: def.OutputSchema,
	}, nil
}
