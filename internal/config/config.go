package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	StaticPath     string        `mapstructure:"static_path"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`

	Rooms        []string `mapstructure:"rooms"`
	DefaultSlots int      `mapstructure:"default_slots"`
	MinSlots     int      `mapstructure:"min_slots"`
	MaxSlots     int      `mapstructure:"max_slots"`
	LogCap       int      `mapstructure:"log_cap"`

	// Translate submission throttling, per session.
	TranslateLimit  int           `mapstructure:"translate_limit"`
	TranslateWindow time.Duration `mapstructure:"translate_window"`

	Provider ProviderConfig `mapstructure:"provider"`
}

// ProviderConfig is the chat-completions backend the gateway talks to.
type ProviderConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	ModelQuality string        `mapstructure:"model_quality"`
	ModelSpeed   string        `mapstructure:"model_speed"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 10000)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("rooms", []string{"room1", "room2", "room3"})
	v.SetDefault("default_slots", 3)
	v.SetDefault("min_slots", 2)
	v.SetDefault("max_slots", 5)
	v.SetDefault("log_cap", 50)

	v.SetDefault("translate_limit", 10)
	v.SetDefault("translate_window", "10s")

	v.SetDefault("provider.base_url", "https://api.openai.com/v1")
	v.SetDefault("provider.model_quality", "gpt-4o")
	v.SetDefault("provider.model_speed", "gpt-4o-mini")
	v.SetDefault("provider.timeout", "120s")

	_ = v.BindEnv("provider.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Rooms: %d\n", cfg.Mode, cfg.Port, len(cfg.Rooms))
	return &cfg, nil
}
