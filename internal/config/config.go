package config

import (
	"github.com/spf13/viper"

	"github.com/bookora/service-marketplace/internal/payment"
	"github.com/bookora/service-marketplace/pkg/config"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port                string
	AppEnv              string
	DBConfig            config.DatabaseConfig
	JWTConfig           config.JWTConfig
	KafkaConfig         config.KafkaConfig
	PaymentConfig       payment.Config
	CancellationLenient bool
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}

	v.SetDefault("PAYMENT_GATEWAY", "razorpay")
	v.SetDefault("CANCELLATION_LENIENT", true)

	return &ServiceConfig{
		Port:                config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:              config.GetAppEnv(v),
		DBConfig:            config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:           config.LoadJWTConfig(v),
		KafkaConfig:         config.LoadKafkaConfig(v),
		PaymentConfig:       loadPaymentConfig(v),
		CancellationLenient: v.GetBool("CANCELLATION_LENIENT"),
	}, nil
}

func loadPaymentConfig(v *viper.Viper) payment.Config {
	return payment.Config{
		Gateway:       v.GetString("PAYMENT_GATEWAY"),
		KeyID:         v.GetString("PAYMENT_KEY_ID"),
		KeySecret:     v.GetString("PAYMENT_KEY_SECRET"),
		WebhookSecret: v.GetString("PAYMENT_WEBHOOK_SECRET"),
		BaseURL:       v.GetString("PAYMENT_BASE_URL"),
	}
}
