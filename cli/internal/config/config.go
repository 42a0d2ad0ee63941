package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sflowg/campaignmonitor/cli/internal/security"
	"github.com/sflowg/campaignmonitor/runtime"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when --config is not set.
const DefaultFile = "sflowg-cm.yaml"

// HostConfig represents the sflowg-cm.yaml structure
//
//	nodes:
//	  campaignmonitor:
//	    timeout: 10s
//	    rate_limit: 5
//	credentials:
//	  campaignMonitorApi:
//	    apiKey: ${CM_API_KEY}
//	server:
//	  addr: :8080
//	  workflows: workflows
type HostConfig struct {
	Nodes       map[string]map[string]any `yaml:"nodes"`       // Optional: raw node config sections
	Credentials runtime.CredentialSet     `yaml:"credentials"` // Optional: host credential store
	Server      ServerConfig              `yaml:"server"`      // Optional: HTTP surface settings
}

// ServerConfig represents the HTTP surface configuration
type ServerConfig struct {
	Addr      string `yaml:"addr"`      // Optional: listen address, defaults to ":8080"
	Workflows string `yaml:"workflows"` // Optional: directory of stored workflows, relative to the config file
}

// Load reads and parses the host config file. An empty path falls back to
// DefaultFile and, when that does not exist either, to an empty config.
func Load(path string) (*HostConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	var config HostConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !explicit && os.IsNotExist(err):
		// no config file: defaults only
	default:
		return nil, fmt.Errorf("failed to read config from %q: %w", path, err)
	}

	if err := config.resolvePaths(filepath.Dir(path)); err != nil {
		return nil, err
	}

	// Apply defaults
	config.ApplyDefaults()

	return &config, nil
}

// resolvePaths makes the workflows directory absolute. A relative directory
// is read against, and must stay within, the directory of the config file.
func (c *HostConfig) resolvePaths(baseDir string) error {
	if c.Server.Workflows == "" {
		return nil
	}
	dir, err := security.ResolveWithin(baseDir, c.Server.Workflows)
	if err != nil {
		return fmt.Errorf("invalid workflows directory: %w", err)
	}
	c.Server.Workflows = dir
	return nil
}

// ApplyDefaults fills in missing optional fields with defaults
func (c *HostConfig) ApplyDefaults() {
	if c.Nodes == nil {
		c.Nodes = make(map[string]map[string]any)
	}
	if c.Credentials == nil {
		c.Credentials = runtime.CredentialSet{}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// NodeConfig returns the raw config section of a node, nil when absent.
func (c *HostConfig) NodeConfig(name string) map[string]any {
	return c.Nodes[name]
}
