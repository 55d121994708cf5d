// Package credentials stores provider API keys in ~/.verbalist.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const credFileName = "credentials.json"

// Key sources, in resolution order.
const (
	SourceConfig = "config"
	SourceEnv    = "env"
	SourceFile   = "file"
)

// EnvVars maps a provider to the variables that may carry its key.
var EnvVars = map[string][]string{
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"openai": {"OPENAI_API_KEY"},
}

type KeyInfo struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"`     // config | env | file
	CreatedAt time.Time `json:"created_at"` // when it was saved to file
}

// Masked shows the first and last characters of the key.
func (k KeyInfo) Masked() string {
	if len(k.Key) <= 8 {
		return strings.Repeat("*", len(k.Key))
	}
	return k.Key[:4] + strings.Repeat("*", len(k.Key)-8) + k.Key[len(k.Key)-4:]
}

// File is the on-disk key store. The zero value uses DefaultPath.
type File struct {
	Path string
}

func credsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".verbalist"), nil
}

// DefaultPath is ~/.verbalist/credentials.json.
func DefaultPath() (string, error) {
	dir, err := credsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credFileName), nil
}

func (f File) path() (string, error) {
	if f.Path != "" {
		return f.Path, nil
	}
	return DefaultPath()
}

func (f File) readAll() (map[string]KeyInfo, error) {
	p, err := f.path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]KeyInfo{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	keys := map[string]KeyInfo{}
	if err := json.Unmarshal(b, &keys); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return keys, nil
}

func (f File) writeAll(keys map[string]KeyInfo) error {
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(p, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Get returns the saved key for provider, or nil when there is none.
func (f File) Get(provider string) (*KeyInfo, error) {
	keys, err := f.readAll()
	if err != nil {
		return nil, err
	}
	ki, ok := keys[provider]
	if !ok || ki.Key == "" {
		return nil, nil
	}
	ki.Key = stripBearer(ki.Key)
	ki.Source = SourceFile
	return &ki, nil
}

// Set saves key for provider, keeping other providers' keys.
func (f File) Set(provider, key string) error {
	key = stripBearer(strings.TrimSpace(key))
	if key == "" {
		return errors.New("empty key")
	}
	keys, err := f.readAll()
	if err != nil {
		return err
	}
	keys[provider] = KeyInfo{Key: key, Source: SourceFile, CreatedAt: time.Now().UTC()}
	return f.writeAll(keys)
}

// Delete forgets provider's key. The file goes away with the last key.
func (f File) Delete(provider string) error {
	keys, err := f.readAll()
	if err != nil {
		return err
	}
	if _, ok := keys[provider]; !ok {
		return nil
	}
	delete(keys, provider)
	if len(keys) > 0 {
		return f.writeAll(keys)
	}
	p, err := f.path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Resolve finds provider's key: the config value first, then the
// environment, then the credentials file. It returns nil when none is set.
func (f File) Resolve(provider, configured string, getenv func(string) string) (*KeyInfo, error) {
	if k := stripBearer(strings.TrimSpace(configured)); k != "" {
		return &KeyInfo{Key: k, Source: SourceConfig}, nil
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, name := range EnvVars[provider] {
		if k := stripBearer(strings.TrimSpace(getenv(name))); k != "" {
			return &KeyInfo{Key: k, Source: SourceEnv}, nil
		}
	}
	return f.Get(provider)
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
