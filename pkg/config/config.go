package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the connection string in keyword form for the gorm driver.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// DatabaseURL returns the connection string in URL form for golang-migrate.
func (c DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// Load initializes viper with the given env prefix (e.g. "BOOKING") and
// sensible defaults. Values come from the environment only; there is no
// config file in deployment.
func Load(prefix string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")

	if v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("%s_JWT_SECRET is required", prefix)
	}

	return v, nil
}

// GetAppEnv returns the application environment (development/staging/production).
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// GetServicePort returns the HTTP listen address for the named port key.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// LoadDatabaseConfig reads the database section; dbNameKey names the env key
// holding the database name.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetInt("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads the JWT section.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	return JWTConfig{Secret: v.GetString("JWT_SECRET")}
}

// LoadKafkaConfig reads the Kafka section. Brokers are comma-separated.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	return KafkaConfig{
		Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}
