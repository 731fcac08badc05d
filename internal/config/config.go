package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mcpchat/mcpchat/internal/mcp"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "mcp_config.json"

// Config is the configuration loaded from a single file. It is not modified
// after Load returns.
type Config struct {
	// Path is the file the configuration was read from.
	Path string

	// Servers holds every configured tool server, including disabled ones.
	Servers map[string]mcp.Config

	// Agent holds optional agent defaults from the file.
	Agent AgentConfig
}

// ServerConfig is a tool server entry under "mcpServers".
type ServerConfig struct {
	Type     string            `json:"type,omitempty"`
	Command  string            `json:"command,omitempty"`
	Args     []string          `json:"args,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	URL      string            `json:"url,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
	Timeout  int               `json:"timeout,omitempty"` // milliseconds
}

// AgentConfig holds the agent defaults a config file may set.
type AgentConfig struct {
	Model        string   `json:"model,omitempty"`
	BaseURL      string   `json:"baseURL,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    int      `json:"maxTokens,omitempty"`
	MaxSteps     int      `json:"maxSteps,omitempty"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`

	// Tools enables or disables tools by prefixed name or wildcard pattern.
	Tools map[string]bool `json:"tools,omitempty"`
}

type fileConfig struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
	// MCP accepts opencode-style entries as well.
	MCP   map[string]mcp.Config `json:"mcp"`
	Agent AgentConfig           `json:"agent"`
}

// Load reads the configuration file at path. JSON, JSONC and YAML (by
// .yaml or .yml extension) are accepted. {env:VAR} and {file:path}
// placeholders are resolved before parsing.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Item: path, Err: ErrConfigNotFound}
		}
		return nil, &Error{Item: path, Err: err}
	}

	data, err = normalize(path, data)
	if err != nil {
		return nil, &Error{Item: path, Err: err}
	}
	data = interpolate(data, filepath.Dir(path))

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &Error{Item: path, Err: fmt.Errorf("parse: %w", err)}
	}

	servers, err := file.servers()
	if err != nil {
		return nil, &Error{Item: path, Err: err}
	}

	enabled := 0
	for _, s := range servers {
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return nil, &Error{Item: path, Err: ErrNoServers}
	}

	return &Config{
		Path:    path,
		Servers: servers,
		Agent:   file.Agent,
	}, nil
}

// normalize turns the raw file into plain JSON.
func normalize(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		return out, nil
	default:
		// Strip JSONC comments using tidwall/jsonc
		return jsonc.ToJSON(data), nil
	}
}

func (f *fileConfig) servers() (map[string]mcp.Config, error) {
	servers := make(map[string]mcp.Config, len(f.MCPServers)+len(f.MCP))

	names := make([]string, 0, len(f.MCPServers))
	for name := range f.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg, err := f.MCPServers[name].toMCP()
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", name, err)
		}
		servers[name] = cfg
	}

	for name, cfg := range f.MCP {
		if _, dup := servers[name]; dup {
			return nil, fmt.Errorf("server %q defined twice", name)
		}
		servers[name] = cfg
	}
	return servers, nil
}

func (s ServerConfig) toMCP() (mcp.Config, error) {
	cfg := mcp.Config{
		Enabled: !s.Disabled,
		Headers: s.Headers,
		Timeout: s.Timeout,
	}

	switch {
	case s.URL != "" && s.Command != "":
		return cfg, errors.New("set either command or url, not both")
	case s.URL != "":
		cfg.Type = mcp.TransportTypeRemote
		cfg.URL = s.URL
	case s.Command != "":
		cfg.Type = mcp.TransportTypeStdio
		cfg.Command = append([]string{s.Command}, s.Args...)
		cfg.Environment = s.Env
	default:
		return cfg, errors.New("missing command or url")
	}

	if s.Type != "" && mcp.TransportType(s.Type) != cfg.Type {
		// "local" is accepted as a synonym for stdio.
		if !(cfg.Type == mcp.TransportTypeStdio && s.Type == string(mcp.TransportTypeLocal)) {
			return cfg, fmt.Errorf("type %q does not match the given command/url", s.Type)
		}
	}
	return cfg, nil
}

// EnabledServers returns the servers that should be connected.
func (c *Config) EnabledServers() map[string]mcp.Config {
	enabled := make(map[string]mcp.Config, len(c.Servers))
	for name, s := range c.Servers {
		if s.Enabled {
			enabled[name] = s
		}
	}
	return enabled
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return escapeJSON(os.Getenv(varName))
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			home := os.Getenv("HOME")
			filePath = filepath.Join(home, filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // Keep original if file not found
		}
		return escapeJSON(strings.TrimRight(string(content), "\r\n"))
	})

	return []byte(str)
}

func escapeJSON(s string) string {
	quoted, _ := json.Marshal(s)
	return string(quoted[1 : len(quoted)-1])
}
