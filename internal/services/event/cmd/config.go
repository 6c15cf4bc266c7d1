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

	Rabbit rabbitmq.RabbitMQConfig

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string

	Topics        []string
	BatchSize     int
	FlushInterval time.Duration
	DedupTTL      time.Duration
	DedupMax      int

	HTTPPort       int
	ReadinessGrace time.Duration
}

func loadConfig() Config {
	_ = godotenv.Load() // .env opzionale

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", 1883)
	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("HOSTNAME", "irrixa-events")
	v.SetDefault("RABBITMQ_CONNECT_RETRIES", 5)
	v.SetDefault("RABBITMQ_CONNECT_MAX_ELAPSED", "10s")
	v.SetDefault("INFLUX_URL", "http://localhost:8086")
	v.SetDefault("INFLUX_ORG", "irrixa")
	v.SetDefault("INFLUX_BUCKET", "events")
	v.SetDefault("EVENT_SUB_TOPICS", "event/configSaved/#,event/actualIrrigation/#")
	v.SetDefault("WRITE_BATCH_SIZE", 10)
	v.SetDefault("WRITE_FLUSH_INTERVAL", "200ms")
	v.SetDefault("DEDUP_TTL", "10m")
	v.SetDefault("DEDUP_MAX", 20000)
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("READINESS_GRACE", "5s")

	return Config{
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogEncoding: v.GetString("LOG_ENCODING"),
		Rabbit: rabbitmq.RabbitMQConfig{
			Host:       v.GetString("RABBITMQ_HOST"),
			Port:       v.GetInt("RABBITMQ_PORT"),
			User:       v.GetString("RABBITMQ_USER"),
			Password:   v.GetString("RABBITMQ_PASSWORD"),
			ClientID:   v.GetString("HOSTNAME"),
			MaxRetries: v.GetInt("RABBITMQ_CONNECT_RETRIES"),
			MaxElapsed: v.GetDuration("RABBITMQ_CONNECT_MAX_ELAPSED"),
		},
		InfluxURL:      v.GetString("INFLUX_URL"),
		InfluxToken:    v.GetString("INFLUX_TOKEN"),
		InfluxOrg:      v.GetString("INFLUX_ORG"),
		InfluxBucket:   v.GetString("INFLUX_BUCKET"),
		Topics:         splitList(v.GetString("EVENT_SUB_TOPICS")),
		BatchSize:      v.GetInt("WRITE_BATCH_SIZE"),
		FlushInterval:  v.GetDuration("WRITE_FLUSH_INTERVAL"),
		DedupTTL:       v.GetDuration("DEDUP_TTL"),
		DedupMax:       v.GetInt("DEDUP_MAX"),
		HTTPPort:       v.GetInt("HTTP_PORT"),
		ReadinessGrace: v.GetDuration("READINESS_GRACE"),
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
