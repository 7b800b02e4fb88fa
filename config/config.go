package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Address string `yaml:"address"`
}

type DBConfig struct {
	ConnString    string `yaml:"conn_string"`
	MigrationsDir string `yaml:"migrations_dir"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// EngagementConfig settles the lifecycle questions the product left open.
type EngagementConfig struct {
	AllowMilestonesBeforeAward bool `yaml:"allow_milestones_before_award"`
	AllowCloseFromOpen         bool `yaml:"allow_close_from_open"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DB         DBConfig         `yaml:"db"`
	JWT        JWTConfig        `yaml:"jwt"`
	Engagement EngagementConfig `yaml:"engagement"`
}

// Load reads the YAML file at path (optional) and then applies environment
// overrides, which always win.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Address: "0.0.0.0:8080"},
		DB:     DBConfig{MigrationsDir: "./migrations"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	OverrideFromEnv(cfg)

	if cfg.DB.ConnString == "" {
		return nil, fmt.Errorf("db conn string is not set (POSTGRES_CONN)")
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is not set (JWT_SECRET)")
	}
	return cfg, nil
}

// OverrideFromEnv overlays environment variables onto cfg.
func OverrideFromEnv(cfg *Config) {
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}
	if conn := os.Getenv("POSTGRES_CONN"); conn != "" {
		cfg.DB.ConnString = conn
	}
	if dir := os.Getenv("MIGRATIONS_DIR"); dir != "" {
		cfg.DB.MigrationsDir = dir
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}
}
