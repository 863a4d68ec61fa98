package config

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr   = ":3000"
	DefaultEmbedModel   = "nomic-embed-text"
	DefaultChatModel    = "llama3.1"
	DefaultEmbeddingDim = 768
)

type PostgresConfig struct {
	Dsn             string `mapstructure:"dsn"`
	MaxIdleConns    int    `mapstructure:"maxIdleConns"`
	MaxOpenConns    int    `mapstructure:"maxOpenConns"`
	ConnMaxIdleTime int    `mapstructure:"connMaxIdleTime"`
	ConnMaxLifetime int    `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	URL         string `mapstructure:"url"`
	PoolSize    int    `mapstructure:"poolSize"`
	ClusterMode bool   `mapstructure:"clusterMode"`
}

type OllamaConfig struct {
	URL          string `mapstructure:"url"`
	EmbedModel   string `mapstructure:"embedModel"`
	ChatModel    string `mapstructure:"chatModel"`
	EmbeddingDim int    `mapstructure:"embeddingDim"`
}

type AuthConfig struct {
	// TokenSecret verifies the HS256 bearer tokens issued by the external
	// identity service.
	TokenSecret string `mapstructure:"tokenSecret"`
	// WebhookSecret authenticates the identity registration hook.
	WebhookSecret string `mapstructure:"webhookSecret"`
}

type Config struct {
	Debug        bool           `mapstructure:"debug"`
	ListenAddr   string         `mapstructure:"listenAddr"`
	AllowOrigins []string       `mapstructure:"allowOrigins"`
	Auth         AuthConfig     `mapstructure:"auth"`
	Redis        RedisConfig    `mapstructure:"redis"`
	Postgres     PostgresConfig `mapstructure:"postgres"`
	Ollama       OllamaConfig   `mapstructure:"ollama"`
}

func (c *Config) Sanitize() error {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Ollama.EmbedModel == "" {
		c.Ollama.EmbedModel = DefaultEmbedModel
	}
	if c.Ollama.ChatModel == "" {
		c.Ollama.ChatModel = DefaultChatModel
	}
	if c.Ollama.EmbeddingDim == 0 {
		c.Ollama.EmbeddingDim = DefaultEmbeddingDim
	}
	return nil
}

func LoadConfig(filename string) (*Config, error) {
	viper.SetConfigFile(filename)
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Sanitize(); err != nil {
		return nil, err
	}
	return &config, nil
}
