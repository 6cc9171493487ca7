package feed

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ModeGroup maps a logical transport mode onto the upstream sub-modes that
// have to be queried for it. Disruptions use physical modes, stations use
// commercial modes - RER in particular fans out to several of each.
type ModeGroup struct {
	Name            string   `yaml:"name" validate:"required"`
	PhysicalModes   []string `yaml:"physical_modes"`
	CommercialModes []string `yaml:"commercial_modes"`
}

type Config struct {
	Groups []ModeGroup `yaml:"groups" validate:"required,min=1,dive"`

	// DisruptionFilter is an expr program deciding which upstream
	// disruptions become records. Variables: tags, status, severity.
	DisruptionFilter string `yaml:"disruption_filter" validate:"required"`
}

func DefaultConfig() Config {
	return Config{
		Groups: []ModeGroup{
			{
				Name:            "metro",
				PhysicalModes:   []string{"Metro"},
				CommercialModes: []string{"Metro"},
			},
			{
				Name:            "bus",
				PhysicalModes:   []string{"Bus"},
				CommercialModes: []string{"Bus"},
			},
			{
				Name:            "rer",
				PhysicalModes:   []string{"RapidTransit", "Train"},
				CommercialModes: []string{"RapidTransit", "LocalTrain", "RailShuttle", "regionalRail"},
			},
		},
		DisruptionFilter: `"Actualité" in tags`,
	}
}

// LoadConfig reads a YAML config file, falling back to the compiled defaults
// when path is empty.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	configBytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	config := Config{
		DisruptionFilter: DefaultConfig().DisruptionFilter,
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(config); err != nil {
		return Config{}, err
	}

	return config, nil
}
