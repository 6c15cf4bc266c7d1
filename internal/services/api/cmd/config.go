package main

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/LeonardoBeccarini/irrixa/pkg/rabbitmq"
)

type Config struct {
	LogLevel    string
	LogEncoding string

	Port     string
	GRPCPort string
	Origins  []string
	Timezone string

	BackendURL      string
	DataURL         string
	BlocksPath      string
	WeatherPath     string
	HTTPTimeout     time.Duration
	ActionTimeout   time.Duration
	RefreshInterval time.Duration

	CBFails    int
	CBOpen     time.Duration
	CBInterval time.Duration

	PublishEvents  bool
	PublishTimeout time.Duration
	Rabbit         rabbitmq.RabbitMQConfig
}

func loadConfig() Config {
	_ = godotenv.Load() // .env opzionale, come per i fetcher

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("PORT", "5001")
	v.SetDefault("GRPC_PORT", "5002")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("TZ_NAME", "UTC")
	v.SetDefault("BACKEND_URL", "http://localhost:5000")
	v.SetDefault("DATA_URL", "http://localhost:8000")
	v.SetDefault("BLOCKS_PATH", "/data/block_irrigation.json")
	v.SetDefault("WEATHER_PATH", "/Weather/%s/weather_data.json")
	v.SetDefault("HTTP_TIMEOUT", "10s")
	v.SetDefault("ACTION_TIMEOUT", "120s")
	v.SetDefault("REFRESH_INTERVAL", "10m")
	v.SetDefault("CB_FAILS", 3)
	v.SetDefault("CB_OPEN", "30s")
	v.SetDefault("CB_INTERVAL", "60s")
	v.SetDefault("PUBLISH_EVENTS", true)
	v.SetDefault("PUBLISH_TIMEOUT", "5s")
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", 1883)
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("HOSTNAME", "irrixa-api")
	v.SetDefault("RABBITMQ_CONNECT_RETRIES", 5)
	v.SetDefault("RABBITMQ_CONNECT_MAX_ELAPSED", "10s")

	return Config{
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogEncoding:     v.GetString("LOG_ENCODING"),
		Port:            v.GetString("PORT"),
		GRPCPort:        v.GetString("GRPC_PORT"),
		Origins:         splitList(v.GetString("CORS_ORIGINS")),
		Timezone:        v.GetString("TZ_NAME"),
		BackendURL:      v.GetString("BACKEND_URL"),
		DataURL:         v.GetString("DATA_URL"),
		BlocksPath:      v.GetString("BLOCKS_PATH"),
		WeatherPath:     v.GetString("WEATHER_PATH"),
		HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
		ActionTimeout:   v.GetDuration("ACTION_TIMEOUT"),
		RefreshInterval: v.GetDuration("REFRESH_INTERVAL"),
		CBFails:         v.GetInt("CB_FAILS"),
		CBOpen:          v.GetDuration("CB_OPEN"),
		CBInterval:      v.GetDuration("CB_INTERVAL"),
		PublishEvents:   v.GetBool("PUBLISH_EVENTS"),
		PublishTimeout:  v.GetDuration("PUBLISH_TIMEOUT"),
		Rabbit: rabbitmq.RabbitMQConfig{
			Host:       v.GetString("RABBITMQ_HOST"),
			Port:       v.GetInt("RABBITMQ_PORT"),
			User:       v.GetString("RABBITMQ_USER"),
			Password:   v.GetString("RABBITMQ_PASSWORD"),
			ClientID:   v.GetString("HOSTNAME"),
			MaxRetries: v.GetInt("RABBITMQ_CONNECT_RETRIES"),
			MaxElapsed: v.GetDuration("RABBITMQ_CONNECT_MAX_ELAPSED"),
		},
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
