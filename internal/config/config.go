package config

import (
	"os"
	"strconv"
)

type Config struct {
	DB          DBConfig
	Paypal      PaypalConfig
	SMTP        SMTPConfig
	KafkaConfig KafkaConfig
	Pricing     PricingConfig
	HTTPAddr    string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// PaypalConfig - доступ к API PayPal. Mode переключает sandbox/live.
type PaypalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string
}

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	FromEmail  string
	AdminEmail string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// PricingConfig - параметры расчета итоговой суммы. Tolerance - допуск
// при сверке с суммой PayPal, фиксированный в валютных единицах.
type PricingConfig struct {
	ShippingFee      float64
	FreeShippingFrom float64
	Tolerance        float64
}

func LoadConfig() *Config {
	dbconfig := DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "user"),
		Password: getEnv("DB_PASSWORD", "pass"),
		DBName:   getEnv("DB_NAME", "shop_db"),
	}

	paypalConf := PaypalConfig{
		ClientID:     getEnv("PAYPAL_CLIENT_ID", ""),
		ClientSecret: getEnv("PAYPAL_CLIENT_SECRET", ""),
		Mode:         getEnv("PAYPAL_MODE", "sandbox"),
	}

	smtpConf := SMTPConfig{
		Host:       getEnv("SMTP_HOST", "localhost"),
		Port:       getEnvInt("SMTP_PORT", 587),
		User:       getEnv("SMTP_USER", ""),
		Password:   getEnv("SMTP_PASSWORD", ""),
		FromEmail:  getEnv("DEFAULT_FROM_EMAIL", "noreply@claudeshop.local"),
		AdminEmail: getEnv("ADMIN_EMAIL", "admin@claudeshop.local"),
	}

	kafkaConf := KafkaConfig{
		Brokers: []string{getEnv("KAFKA_BROKER", "localhost:9092")},
		Topic:   getEnv("KAFKA_TOPIC", "order-events"),
	}

	pricingConf := PricingConfig{
		ShippingFee:      getEnvFloat("SHIPPING_FEE", 20),
		FreeShippingFrom: getEnvFloat("FREE_SHIPPING_FROM", 100),
		Tolerance:        getEnvFloat("AMOUNT_TOLERANCE", 0.02),
	}

	return &Config{
		DB:          dbconfig,
		Paypal:      paypalConf,
		SMTP:        smtpConf,
		KafkaConfig: kafkaConf,
		Pricing:     pricingConf,
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}

	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}

	return defaultValue
}
