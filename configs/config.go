package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type R2 struct {
	AccountID  string `yaml:"account_id" env:"R2_ACCOUNT_ID"`
	AccessKey  string `yaml:"access_key" env:"R2_ACCESS_KEY"`
	SecretKey  string `yaml:"secret_key" env:"R2_SECRET_KEY"`
	BucketName string `yaml:"bucket_name" env:"R2_BUCKET_NAME"`
	PublicURL  string `yaml:"public_url" env:"R2_PUBLIC_URL"`
	// Endpoint overrides the account derived R2 endpoint (MinIO, local S3).
	Endpoint string `yaml:"endpoint" env:"R2_ENDPOINT"`
}

type Graph struct {
	BaseURL    string `yaml:"base_url" env:"GRAPH_BASE_URL" env-default:"https://graph.facebook.com"`
	APIVersion string `yaml:"api_version" env:"GRAPH_API_VERSION" env-default:"v21.0"`
}

type Instagram struct {
	BaseURL          string        `yaml:"base_url" env:"INSTAGRAM_BASE_URL" env-default:"https://graph.facebook.com"`
	APIVersion       string        `yaml:"api_version" env:"INSTAGRAM_API_VERSION" env-default:"v21.0"`
	FallbackImageURL string        `yaml:"fallback_image_url" env:"INSTAGRAM_FALLBACK_IMAGE_URL" env-default:"https://images.unsplash.com/photo-1611162617474-5b21e879e113?w=1080"`
	PollAttempts     int           `yaml:"poll_attempts" env:"INSTAGRAM_POLL_ATTEMPTS" env-default:"12"`
	PollInterval     time.Duration `yaml:"poll_interval" env:"INSTAGRAM_POLL_INTERVAL" env-default:"2s"`
}

type YouTube struct {
	RSSEndpoint string `yaml:"rss_endpoint" env:"YOUTUBE_RSS_ENDPOINT"`
	// APIEndpoint overrides the Data API base URL.
	APIEndpoint string `yaml:"api_endpoint" env:"YOUTUBE_API_ENDPOINT"`
}

type Publish struct {
	Timeout     time.Duration `yaml:"timeout" env:"PUBLISH_TIMEOUT" env-default:"30s"`
	Concurrency int           `yaml:"concurrency" env:"PUBLISH_CONCURRENCY" env-default:"10"`
}

type Config struct {
	Port               string    `yaml:"port" env:"PORT" env-default:"3000"`
	GoogleClientID     string    `yaml:"google_client_id" env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string    `yaml:"google_client_secret" env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string    `yaml:"google_redirect_uri" env:"GOOGLE_REDIRECT_URI" env-default:"http://localhost:3000/auth/youtube/callback"`
	PostgresURI        string    `yaml:"postgres_uri" env:"POSTGRES_URI"`
	RedisURI           string    `yaml:"redis_uri" env:"REDIS_URI" env-default:"localhost:6379"`
	FrontendURL        string    `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	SecretKey          string    `yaml:"secret_key" env:"SECRET_KEY"`
	CookieName         string    `yaml:"cookie_name" env:"COOKIE_NAME" env-default:"autopost_session"`
	APIKey             string    `yaml:"api_key" env:"API_KEY"`
	R2                 R2        `yaml:"r2"`
	Graph              Graph     `yaml:"graph"`
	Instagram          Instagram `yaml:"instagram"`
	YouTube            YouTube   `yaml:"youtube"`
	Publish            Publish   `yaml:"publish"`
}

// LoadConfig reads the configuration from the environment. When path is not
// empty the YAML file is read first and the environment overrides it.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
