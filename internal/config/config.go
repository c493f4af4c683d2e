package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"catalog-api/internal/encryption"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cipher   CipherConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type CipherConfig struct {
	// Key is the raw AES-256 key. Must be exactly 32 bytes.
	Key string
}

func Load() *Config {
	// Populate the process environment from .env if present, then let viper
	// pick everything up.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Cipher: CipherConfig{
			Key: viper.GetString("ENCRYPTION_KEY"),
		},
	}
}

// Validate checks the parts of the configuration the process cannot run
// without, so startup fails fast on a malformed key.
func (c *Config) Validate() error {
	if len(c.Cipher.Key) != encryption.KeyLength {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly %d bytes, got %d", encryption.KeyLength, len(c.Cipher.Key))
	}
	if c.Database.User == "" || c.Database.Database == "" {
		return fmt.Errorf("DB_USER and DB_DATABASE are required")
	}
	return nil
}

// DSN builds the postgres connection string for the pgx stdlib driver.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.Schema,
	)
}
