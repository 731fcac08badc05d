package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credential is the secret that authorizes calls to the model provider.
type Credential struct {
	// Name is the environment variable the value was read from.
	Name  string
	value string
}

// Value returns the secret itself.
func (c Credential) Value() string {
	return c.value
}

// String never includes the secret.
func (c Credential) String() string {
	if c.value == "" {
		return c.Name + "=<unset>"
	}
	return c.Name + "=<redacted>"
}

// LoadCredential reads the named environment variable after loading the
// given .env files. Missing .env files are skipped; variables already set in
// the environment take precedence over .env values.
func LoadCredential(name string, envFiles ...string) (Credential, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Credential{}, &Error{Item: file, Err: err}
		}
	}

	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return Credential{}, &Error{Item: name, Err: ErrCredentialMissing}
	}
	return Credential{Name: name, value: value}, nil
}
