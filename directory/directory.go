package directory

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glimte/mqlink-go/messaging"
)

const (
	// EnvPath names the environment variable overriding the registry location.
	EnvPath = "MQLINK_DIRECTORY"

	// DefaultFile is the registry read when EnvPath is unset.
	DefaultFile = "mqlink.yaml"

	// DefaultFactoryName is the connection factory entry used when none is
	// configured.
	DefaultFactoryName = "connectionFactory"
)

// Registry maps logical names to broker URLs and physical queue names.
type Registry struct {
	ConnectionFactories map[string]string `yaml:"connection-factories"`
	Queues              map[string]string `yaml:"queues"`
}

// Load reads and parses a registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &messaging.ConfigError{Op: "read directory", Name: path, Err: err}
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, &messaging.ConfigError{Op: "parse directory", Name: path, Err: err}
	}
	return &reg, nil
}

// DefaultPath returns the registry path from MQLINK_DIRECTORY, falling back
// to mqlink.yaml in the working directory.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultFile
}

// FactoryURL returns the broker URL registered under name.
func (r *Registry) FactoryURL(name string) (string, error) {
	url, ok := r.ConnectionFactories[name]
	if !ok {
		return "", &messaging.ConfigError{Op: "lookup connection factory", Name: name, Err: messaging.ErrNameNotFound}
	}
	return url, nil
}

// QueueName returns the physical queue registered under alias. Directory
// mode never falls back to literal names: a missing alias is an error.
func (r *Registry) QueueName(alias string) (string, error) {
	name, ok := r.Queues[alias]
	if !ok {
		return "", &messaging.ConfigError{Op: "lookup queue", Name: alias, Err: messaging.ErrNameNotFound}
	}
	return name, nil
}
