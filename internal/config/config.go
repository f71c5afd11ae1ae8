package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort        = "8080"
	defaultWhatsAppNumber = "917889386542"
	defaultCORSOrigin     = "http://localhost:3000"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string

	// Admin back-office
	AdminPassword string
	JWTSecret     string

	// Razorpay
	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayWebhookSecret string

	// Storefront
	WhatsAppNumber string
	UPIID          string
	CORSOrigin     string

	// Trusted callers get the internal rate-limit tier.
	InternalServiceKey string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:                os.Getenv("DB_HOST"),
		DBUser:                os.Getenv("DB_USER"),
		DBPassword:            os.Getenv("DB_PASSWORD"),
		DBName:                os.Getenv("DB_NAME"),
		DBPort:                os.Getenv("DB_PORT"),
		AppPort:               getEnv("APP_PORT", defaultAppPort),
		AppEnv:                os.Getenv("APP_ENV"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		WhatsAppNumber:        getEnv("WHATSAPP_NUMBER", defaultWhatsAppNumber),
		UPIID:                 os.Getenv("UPI_ID"),
		CORSOrigin:            getEnv("CORS_ORIGIN", defaultCORSOrigin),
		InternalServiceKey:    os.Getenv("INTERNAL_SERVICE_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
