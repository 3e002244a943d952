package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/fkhayef/spartan/internal/database"
)

// Config holds all application configuration, read from the environment
// with sensible local-development defaults.
type Config struct {
	Port string
	DB   struct {
		Type     string
		Path     string
		Host     string
		Port     string
		Username string
		Password string
		Database string
		SSLMode  string
	}
}

// Load reads configuration from environment variables and an optional
// config file in the working directory.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("db.type", "sqlite")
	v.SetDefault("db.path", "database/spartan.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.username", "user")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.database", "spartan")
	v.SetDefault("db.sslmode", "disable")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Database resolves DB_TYPE into a driver name and DSN. sqlite maps to
// a file path, psql to a connection URL; anything else is rejected at
// startup.
func (c Config) Database() (driver, dsn string, err error) {
	switch c.DB.Type {
	case "sqlite":
		return database.DriverSQLite, c.DB.Path, nil
	case "psql", "postgres":
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			c.DB.Username, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
		return database.DriverPostgres, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", c.DB.Type)
	}
}
