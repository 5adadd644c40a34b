package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrDeploymentNotFound is returned when the deployment artifact does not exist.
var ErrDeploymentNotFound = errors.New("deployment artifact not found")

// DefaultDeploymentPath is where deploy scripts write the artifact.
var DefaultDeploymentPath = filepath.Join("deployment", "contracts.json")

// Deployment is the artifact written by the contract deploy scripts:
//
//	{"contracts": {"BigIncGenesis": {"address": "0x..."}, ...}}
//
// JSON is a subset of YAML, so the same parser handles both encodings.
type Deployment struct {
	Network   string                      `yaml:"network"`
	Contracts map[string]DeployedContract `yaml:"contracts"`
}

// DeployedContract is a single entry in the deployment artifact.
type DeployedContract struct {
	Address string `yaml:"address"`
	TxHash  string `yaml:"transaction_hash,omitempty"`
}

// LoadDeployment parses the artifact at path.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDeploymentNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading deployment: %w", err)
	}
	return ParseDeployment(data, path)
}

// ParseDeployment decodes artifact bytes; source names them in errors.
func ParseDeployment(data []byte, source string) (*Deployment, error) {
	var d Deployment
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing deployment %s: %w", source, err)
	}
	return &d, nil
}

// ApplyDeployment copies the three known contract addresses from d into the
// network's address set. Entries missing from the artifact keep their current
// value; unknown contract names are ignored. It returns the names that changed.
func (c *Config) ApplyDeployment(network string, d *Deployment) []string {
	cur := c.Addresses(network)
	var changed []string

	set := func(name string, field *string) {
		entry, ok := d.Contracts[name]
		if !ok || entry.Address == "" || entry.Address == *field {
			return
		}
		*field = entry.Address
		changed = append(changed, name)
	}
	set(NameGenesis, &cur.BigIncGenesis)
	set(NameMockUSDT, &cur.MockUSDT)
	set(NameMockUSDC, &cur.MockUSDC)

	if len(changed) > 0 {
		c.SetAddresses(network, cur)
	}
	return changed
}
