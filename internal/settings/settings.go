// Package settings holds the mutable runtime settings: provider keys,
// model names, endpoint URLs and the cloud storage root. Values start
// from environment-derived defaults and are overlaid with whatever was
// persisted in settings.json.
package settings

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"github.com/thelocal/backend/internal/config"
	"github.com/thelocal/backend/pkg/logger"
)

// Keys recognised by the store. Anything else in the settings file or an
// update payload is ignored.
const (
	KeyOpenAIKey          = "openai_key"
	KeyOpenAIModel        = "openai_model"
	KeyOllamaURL          = "ollama_url"
	KeyOllamaModel        = "ollama_model"
	KeyRemoteURL          = "remote_url"
	KeyTailscaleIP        = "tailscale_ip"
	KeySystemInstructions = "system_instructions"
	KeyCloudStoragePath   = "cloud_storage_path"
)

// Store is the runtime settings map with JSON-file persistence. A single
// mutex serialises every mutation together with its file write.
type Store struct {
	mu               sync.Mutex
	path             string
	defaultCloudPath string
	values           map[string]string
	onStorageChange  func(path string)
}

func New(path string, defaults config.DefaultsConfig) *Store {
	return &Store{
		path:             path,
		defaultCloudPath: defaults.CloudStoragePath,
		values: map[string]string{
			KeyOpenAIKey:          defaults.OpenAIKey,
			KeyOpenAIModel:        defaults.OpenAIModel,
			KeyOllamaURL:          defaults.OllamaURL,
			KeyOllamaModel:        defaults.OllamaModel,
			KeyRemoteURL:          defaults.RemoteURL,
			KeyTailscaleIP:        defaults.TailscaleIP,
			KeySystemInstructions: defaults.SystemInstructions,
			KeyCloudStoragePath:   defaults.CloudStoragePath,
		},
	}
}

// OnStoragePathChange registers a callback fired whenever the cloud
// storage path changes through Update.
func (s *Store) OnStoragePathChange(fn func(path string)) {
	s.onStorageChange = fn
}

// Load overlays persisted values on the defaults. Only keys already known
// to the store and holding string values are accepted; everything else is
// ignored without error. URL and path fields are normalized afterward.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err == nil {
		var stored map[string]interface{}
		if err := json.Unmarshal(data, &stored); err != nil {
			logger.Warnf("Failed to parse %s: %v", s.path, err)
		} else {
			for key, value := range stored {
				str, ok := value.(string)
				if !ok {
					continue
				}
				if _, known := s.values[key]; known {
					s.values[key] = str
				}
			}
		}
	} else if !os.IsNotExist(err) {
		logger.Warnf("Failed to read %s: %v", s.path, err)
	}

	if s.values[KeyOllamaURL] != "" {
		s.values[KeyOllamaURL] = NormalizeURL(s.values[KeyOllamaURL], "http")
	}
	if s.values[KeyRemoteURL] != "" {
		s.values[KeyRemoteURL] = NormalizeURL(s.values[KeyRemoteURL], "https")
	}
	s.values[KeyCloudStoragePath] = NormalizePath(s.values[KeyCloudStoragePath], s.defaultCloudPath)
}

// Get returns a copy of the full settings map.
func (s *Store) Get() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Value returns a single setting.
func (s *Store) Value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Update applies a partial update. Only known keys carrying string values
// are applied; each gets its type-specific normalization. The changed
// key/value pairs are returned, and the whole map is persisted when at
// least one key changed.
func (s *Store) Update(partial map[string]interface{}) map[string]string {
	s.mu.Lock()

	updated := make(map[string]string)
	for key := range s.values {
		raw, present := partial[key]
		if !present {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case KeyOllamaURL:
			value = NormalizeURL(value, "http")
		case KeyRemoteURL:
			value = NormalizeURL(value, "https")
		case KeyCloudStoragePath:
			value = NormalizePath(value, s.defaultCloudPath)
		}
		s.values[key] = value
		updated[key] = value
	}

	if len(updated) > 0 {
		s.saveLocked()
	}
	s.mu.Unlock()

	if path, ok := updated[KeyCloudStoragePath]; ok && s.onStorageChange != nil {
		s.onStorageChange(path)
	}
	return updated
}

// DefaultCloudStoragePath returns the configured fallback storage path.
func (s *Store) DefaultCloudStoragePath() string {
	return s.defaultCloudPath
}

func (s *Store) saveLocked() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		logger.Errorf("Failed to encode settings: %v", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		logger.Errorf("Failed to write %s: %v", s.path, err)
	}
}

// NormalizeURL ensures value carries an explicit scheme. Empty or
// whitespace-only input yields the empty string. The operation is
// idempotent.
func NormalizeURL(value, defaultScheme string) string {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return ""
	}
	if strings.HasPrefix(cleaned, "http://") || strings.HasPrefix(cleaned, "https://") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return defaultScheme + ":" + cleaned
	}
	return defaultScheme + "://" + cleaned
}

// NormalizePath trims whitespace and surrounding quotes from a storage
// path, falling back to the default when the result is empty.
func NormalizePath(value, fallback string) string {
	cleaned := strings.Trim(strings.TrimSpace(value), `"`)
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
