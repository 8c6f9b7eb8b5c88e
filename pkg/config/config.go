// Package config provides configuration management for the bot.
// It loads environment variables and makes them available throughout the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// LavalinkNode is one entry of the HYDROGEN_LAVALINK node list: a remote
// audio node the NodePool can dial.
type LavalinkNode struct {
	Address  string
	Password string
	TLS      bool
}

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook      string
	LogsWebhook       string
	LogsWebServerHook string
	GuildsWebhook     string

	// Lavalink
	LinkServer   string
	LinkPassword string
	Lavalink     []LavalinkNode

	// Language
	DefaultLanguage string
	LanguagePath    string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Hoy"
)

// cfg holds the global configuration instance
var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	lavalink, err := parseLavalinkNodes(getEnv("HYDROGEN_LAVALINK", ""))
	if err != nil {
		lavalink = nil
	}

	cfg = &Config{
		// Discord
		BotToken:   getEnv("HYDROGEN_DISCORD_TOKEN", getEnv("botToken", "")),
		DevGuildID: getEnv("devGuildId", ""),

		// MongoDB
		MongoDBURL: getEnv("HYDROGEN_MONGODB_URI", getEnv("mongodbUrl", "mongodb://localhost:27017")),
		DBName:     getEnv("HYDROGEN_MONGODB_DATABASE", getEnv("dbName", "hydrogen")),

		// MQTT
		MQTTHost:     getEnv("HYDROGEN_MQTT_HOST", getEnv("MQTT_Host", "localhost")),
		MQTTPort:     getEnv("HYDROGEN_MQTT_PORT", getEnv("MQTT_Port", "1883")),
		MQTTUser:     getEnv("HYDROGEN_MQTT_USER", getEnv("MQTT_User", "")),
		MQTTPassword: getEnv("HYDROGEN_MQTT_PASSWORD", getEnv("MQTT_Password", "")),

		// Web Server
		Port: getEnv("HYDROGEN_HTTP_PORT", getEnv("PORT", "3000")),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook:      getEnv("HYDROGEN_ERROR_WEBHOOK", getEnv("errorWebhook", "")),
		LogsWebhook:       getEnv("HYDROGEN_LOG_WEBHOOK", getEnv("logsWebhook", "")),
		LogsWebServerHook: getEnv("logsWebServerWebhook", ""),
		GuildsWebhook:     getEnv("guildsWebhook", ""),

		// Lavalink
		LinkServer:   getEnv("linkserver", "localhost"),
		LinkPassword: getEnv("linkpassword", ""),
		Lavalink:     lavalink,

		// Language
		DefaultLanguage: getEnv("HYDROGEN_DEFAULT_LANGUAGE", "en-US"),
		LanguagePath:    getEnv("HYDROGEN_LANGUAGE_PATH", "lang"),
	}
}

// parseLavalinkNodes parses HYDROGEN_LAVALINK, a semicolon-separated list of
// `host:port,password,tls?` tuples, into concrete node descriptors.
func parseLavalinkNodes(raw string) ([]LavalinkNode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var nodes []LavalinkNode
	for _, tuple := range strings.Split(raw, ";") {
		tuple = strings.TrimSpace(tuple)
		if tuple == "" {
			continue
		}

		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("config: malformed lavalink tuple %q", tuple)
		}

		node := LavalinkNode{
			Address:  strings.TrimSpace(parts[0]),
			Password: strings.TrimSpace(parts[1]),
		}
		if len(parts) > 2 {
			tls, err := strconv.ParseBool(strings.TrimSpace(parts[2]))
			if err != nil {
				return nil, fmt.Errorf("config: malformed tls flag in tuple %q: %w", tuple, err)
			}
			node.TLS = tls
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
