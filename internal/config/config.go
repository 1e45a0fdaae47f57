// Package config содержит логику чтения конфигурации сервиса магазина.
package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации сервиса магазина.
type Config struct {
	RunAddress      string `env:"RUN_ADDRESS"`
	DatabaseURI     string `env:"DATABASE_URI"`
	SecretKey       string `env:"SECRET_KEY"`
	TokenAlgorithm  string `env:"TOKEN_ALGORITHM"`
	TokenLifetime   int    `env:"TOKEN_LIFETIME"`
	CORSOrigins     string `env:"CORS_ORIGINS"`
	UploadDir       string `env:"UPLOAD_DIR"`
	MaxFileSize     int64  `env:"MAX_FILE_SIZE"`
	AdminEmail      string `env:"ADMIN_EMAIL"`
	AdminPassword   string `env:"ADMIN_PASSWORD"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envValues := *cfg

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.SecretKey, "s", "", "token signing secret")
	flag.StringVar(&cfg.TokenAlgorithm, "alg", "HS256", "token signing algorithm")
	flag.IntVar(&cfg.TokenLifetime, "ttl", 30, "token lifetime in minutes")
	flag.StringVar(&cfg.CORSOrigins, "cors", "http://localhost:5173,http://localhost:3000", "comma-separated allowed CORS origins")
	flag.StringVar(&cfg.UploadDir, "u", "uploads", "upload storage directory")
	flag.Int64Var(&cfg.MaxFileSize, "max-file-size", 10485760, "maximum upload size in bytes")
	flag.StringVar(&cfg.AdminEmail, "admin-email", "", "bootstrap admin email")
	flag.StringVar(&cfg.AdminPassword, "admin-password", "", "bootstrap admin password")

	flag.Parse()

	if envValues.RunAddress != "" {
		cfg.RunAddress = envValues.RunAddress
	}
	if envValues.DatabaseURI != "" {
		cfg.DatabaseURI = envValues.DatabaseURI
	}
	if envValues.SecretKey != "" {
		cfg.SecretKey = envValues.SecretKey
	}
	if envValues.TokenAlgorithm != "" {
		cfg.TokenAlgorithm = envValues.TokenAlgorithm
	}
	if envValues.TokenLifetime != 0 {
		cfg.TokenLifetime = envValues.TokenLifetime
	}
	if envValues.CORSOrigins != "" {
		cfg.CORSOrigins = envValues.CORSOrigins
	}
	if envValues.UploadDir != "" {
		cfg.UploadDir = envValues.UploadDir
	}
	if envValues.MaxFileSize != 0 {
		cfg.MaxFileSize = envValues.MaxFileSize
	}
	if envValues.AdminEmail != "" {
		cfg.AdminEmail = envValues.AdminEmail
	}
	if envValues.AdminPassword != "" {
		cfg.AdminPassword = envValues.AdminPassword
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}

	return cfg, nil
}

// CORSOriginsList возвращает список разрешённых origin-ов.
func (c *Config) CORSOriginsList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
