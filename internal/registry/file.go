package registry

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/isleforge/isleforge/internal/types"
)

// RegistryFile is the on-disk YAML shape for extending the component
// vocabulary.
type RegistryFile struct {
	Components []types.ComponentRegistration `yaml:"components" validate:"required,dive"`
}

var validate = validator.New()

// LoadFile reads and validates a registry YAML file.
func LoadFile(path string) ([]*types.ComponentRegistration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry file %s: %w", path, err)
	}

	var file RegistryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing registry file %s: %w", path, err)
	}

	if err := validate.Struct(&file); err != nil {
		return nil, fmt.Errorf("invalid registry file %s: %w", path, err)
	}

	result := make([]*types.ComponentRegistration, 0, len(file.Components))
	for i := range file.Components {
		comp := file.Components[i]
		for name, schema := range comp.Props {
			if err := validateSchema(name, schema); err != nil {
				return nil, fmt.Errorf("component %s: %w", comp.Name, err)
			}
		}
		result = append(result, &comp)
	}
	return result, nil
}

func validateSchema(name string, schema types.PropSchema) error {
	switch schema.Kind {
	case types.PropString, types.PropNumber, types.PropBool:
	case types.PropEnum:
		if len(schema.Values) == 0 {
			return fmt.Errorf("prop %s: enum schema requires values", name)
		}
	default:
		return fmt.Errorf("prop %s: unknown schema kind %q", name, schema.Kind)
	}
	if schema.Min != nil && schema.Max != nil && *schema.Min > *schema.Max {
		return fmt.Errorf("prop %s: min %v exceeds max %v", name, *schema.Min, *schema.Max)
	}
	return nil
}

// LoadInto merges a registry file on top of the builtin vocabulary.
func LoadInto(r *ComponentRegistry, path string) error {
	registrations, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, reg := range registrations {
		r.Register(reg)
	}
	return nil
}
