package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	envServer    = "BUDDY_SERVER"
	envToken     = "BUDDY_TOKEN"
	envTokenFile = "BUDDY_TOKEN_FILE"
)

// Config is what the global flags and environment resolve to.
// Flags win over the environment.
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
	Verbose   bool
}

func configFromEnv() *Config {
	c := &Config{
		ServerURL: "http://localhost:8080",
		Token:     os.Getenv(envToken),
		TokenFile: filepath.Join(".buddyctl", "token"),
		Output:    "text",
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.TokenFile = filepath.Join(home, c.TokenFile)
	}
	if v := os.Getenv(envServer); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv(envTokenFile); v != "" {
		c.TokenFile = v
	}
	return c
}

// resolveToken fills Token from the token file left by "admin login"
// unless a token was given explicitly. A missing file is not an error.
func (c *Config) resolveToken() error {
	if c.Token != "" {
		return nil
	}
	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	c.Token = strings.TrimSpace(string(data))
	return nil
}

// storeToken writes the token through a temp file so a crash never
// leaves a half-written token behind.
func (c *Config) storeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.TokenFile), ".token-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), c.TokenFile); err != nil {
		return err
	}
	c.Token = token
	return nil
}

func (c *Config) forgetToken() error {
	c.Token = ""
	err := os.Remove(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
