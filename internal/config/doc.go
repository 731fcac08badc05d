// Package config loads the mcpchat configuration file, the model provider
// credential, and the resolved run settings.
//
// # Configuration File
//
// Load reads one file, by default mcp_config.json in the working
// directory. It is read once per process; a missing file is a fatal
// configuration error and is never retried. The format follows the
// mcpServers layout used by other MCP clients:
//
//	{
//	  // JSONC comments are allowed
//	  "mcpServers": {
//	    "files":  {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-filesystem", "."]},
//	    "remote": {"url": "http://localhost:8081/mcp", "headers": {"Authorization": "Bearer {env:TOKEN}"}},
//	    "off":    {"command": "slow-server", "disabled": true}
//	  },
//	  "agent": {"model": "llama3-8b-8192", "temperature": 0.7, "maxSteps": 15}
//	}
//
// Files ending in .yaml or .yml are parsed as YAML with the same keys.
// opencode-style entries under "mcp" are accepted too.
//
// # Variable Interpolation
//
//   - {env:VARIABLE_NAME} - replaced with the environment variable value
//   - {file:path/to/file} - replaced with the file contents, relative to the
//     config file directory (~/ expands to the home directory)
//
// # Credential
//
// LoadCredential loads .env files with godotenv and then reads the named
// variable. The Credential type never prints its value.
//
// # Settings
//
// Settings are layered: DefaultSettings, then the file's agent section,
// then MCPCHAT_* environment variables (EnvSettings), then command line
// flags. The provider and the credential variable cannot come from the file
// because the credential is checked before the file is read.
//
// # Paths
//
// GetPaths follows the XDG base directory layout:
//
//	Config: ~/.config/mcpchat
//	Cache:  ~/.cache/mcpchat        (console history)
//	State:  ~/.local/state/mcpchat  (log file)
package config
