package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Grant types accepted by the OAuth token endpoint
const (
	GrantPassword          = "password"
	GrantClientCredentials = "client_credentials"
	GrantJWTBearer         = "jwt_bearer"
)

const (
	defaultLoginURL   = "https://login.salesforce.com"
	defaultAPIVersion = "58.0"
)

type Config struct {
	LoginURL       string
	ClientID       string
	ClientSecret   string
	Username       string
	Password       string
	PrivateKeyFile string
	APIVersion     string
	GrantType      string
}

func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv reads the configuration from the process environment, filling in
// defaults, without validating it.
func FromEnv() *Config {
	cfg := &Config{
		LoginURL:       getEnv("SF_LOGIN_URL", defaultLoginURL),
		ClientID:       os.Getenv("SF_CLIENT_ID"),
		ClientSecret:   os.Getenv("SF_CLIENT_SECRET"),
		Username:       os.Getenv("SF_USERNAME"),
		Password:       os.Getenv("SF_PASSWORD"),
		PrivateKeyFile: os.Getenv("SF_PRIVATE_KEY_FILE"),
		APIVersion:     getEnv("SF_API_VERSION", defaultAPIVersion),
		GrantType:      strings.ToLower(os.Getenv("SF_GRANT_TYPE")),
	}

	if cfg.GrantType == "" {
		switch {
		case cfg.PrivateKeyFile != "":
			cfg.GrantType = GrantJWTBearer
		case cfg.Username != "":
			cfg.GrantType = GrantPassword
		default:
			cfg.GrantType = GrantClientCredentials
		}
	}

	return cfg
}

func (c *Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("SF_LOGIN_URL is required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("SF_CLIENT_ID is required")
	}
	if c.APIVersion == "" {
		return fmt.Errorf("SF_API_VERSION is required")
	}

	switch c.GrantType {
	case GrantPassword:
		if c.ClientSecret == "" {
			return fmt.Errorf("SF_CLIENT_SECRET is required")
		}
		if c.Username == "" {
			return fmt.Errorf("SF_USERNAME is required")
		}
		if c.Password == "" {
			return fmt.Errorf("SF_PASSWORD is required")
		}
	case GrantClientCredentials:
		if c.ClientSecret == "" {
			return fmt.Errorf("SF_CLIENT_SECRET is required")
		}
	case GrantJWTBearer:
		if c.Username == "" {
			return fmt.Errorf("SF_USERNAME is required")
		}
		if c.PrivateKeyFile == "" {
			return fmt.Errorf("SF_PRIVATE_KEY_FILE is required")
		}
	default:
		return fmt.Errorf("unsupported SF_GRANT_TYPE %q", c.GrantType)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
