package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Data     DataConfig     `yaml:"data"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type LogConfig struct {
	Level     string `yaml:"level"`
	AuditFile string `yaml:"audit_file"`
}

// DataConfig locates the JSON stores on disk.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultsConfig seeds the runtime settings store. Persisted values in
// settings.json override these on load.
type DefaultsConfig struct {
	OpenAIKey          string `yaml:"openai_key"`
	OpenAIModel        string `yaml:"openai_model"`
	OllamaURL          string `yaml:"ollama_url"`
	OllamaModel        string `yaml:"ollama_model"`
	RemoteURL          string `yaml:"remote_url"`
	TailscaleIP        string `yaml:"tailscale_ip"`
	SystemInstructions string `yaml:"system_instructions"`
	CloudStoragePath   string `yaml:"cloud_storage_path"`
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
		cfg.fillMissing()
	}

	cfg.overrideFromEnv()
	return cfg, nil
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8000",
			Mode: "release",
		},
		Log: LogConfig{
			Level:     "info",
			AuditFile: "the_local.log",
		},
		Data: DataConfig{
			Dir: ".",
		},
		Defaults: DefaultsConfig{
			OpenAIModel:      "gpt-4o-mini",
			OllamaURL:        "http://localhost:11434",
			OllamaModel:      "llama3.1",
			CloudStoragePath: filepath.Join(home, "TheCloud"),
		},
	}
}

// fillMissing backfills zero-valued fields from the defaults so a sparse
// config file still yields a usable configuration.
func (c *Config) fillMissing() {
	def := DefaultConfig()
	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == "" {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Mode == "" {
		c.Server.Mode = def.Server.Mode
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.AuditFile == "" {
		c.Log.AuditFile = def.Log.AuditFile
	}
	if c.Data.Dir == "" {
		c.Data.Dir = def.Data.Dir
	}
	if c.Defaults.OpenAIModel == "" {
		c.Defaults.OpenAIModel = def.Defaults.OpenAIModel
	}
	if c.Defaults.OllamaURL == "" {
		c.Defaults.OllamaURL = def.Defaults.OllamaURL
	}
	if c.Defaults.OllamaModel == "" {
		c.Defaults.OllamaModel = def.Defaults.OllamaModel
	}
	if c.Defaults.CloudStoragePath == "" {
		c.Defaults.CloudStoragePath = def.Defaults.CloudStoragePath
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if file := os.Getenv("AUDIT_LOG_FILE"); file != "" {
		c.Log.AuditFile = file
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		c.Data.Dir = dir
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Defaults.OpenAIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.Defaults.OpenAIModel = model
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		c.Defaults.OllamaURL = url
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		c.Defaults.OllamaModel = model
	}
	if url := os.Getenv("REMOTE_URL"); url != "" {
		c.Defaults.RemoteURL = url
	}
	if ip := os.Getenv("TAILSCALE_IP"); ip != "" {
		c.Defaults.TailscaleIP = ip
	}
	if text := os.Getenv("SYSTEM_INSTRUCTIONS"); text != "" {
		c.Defaults.SystemInstructions = text
	}
	if path := os.Getenv("CLOUD_STORAGE_PATH"); path != "" {
		c.Defaults.CloudStoragePath = path
	}
}

// SettingsFile returns the path of the persisted runtime settings document.
func (c *Config) SettingsFile() string {
	return filepath.Join(c.Data.Dir, "settings.json")
}

// DashboardFile returns the path of the persisted dashboard document.
func (c *Config) DashboardFile() string {
	return filepath.Join(c.Data.Dir, "dashboard_data.json")
}
