package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Http     Http     `yaml:"http"`
	S3       S3       `yaml:"s3"`
	Limits   Limits   `yaml:"limits"`
	LogLevel string   `yaml:"log_level"`
	LogJSON  bool     `yaml:"log_json"`
	Realtime Realtime `yaml:"realtime"`
}

type Http struct {
	Port           int           `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	JwtTTL         time.Duration `yaml:"jwt_ttl"`
}

type S3 struct {
	Endpoint string `yaml:"endpoint"` // empty for real AWS
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
}

type Limits struct {
	MaxBodyChars      int           `yaml:"max_body_chars"`
	MaxChatFileBytes  int64         `yaml:"max_chat_file_bytes"`
	MaxPhotoFileBytes int64         `yaml:"max_photo_file_bytes"`
	MaxChatBatch      int           `yaml:"max_chat_batch"`
	MaxPhotoBatch     int           `yaml:"max_photo_batch"`
	UploadUrlTTL      time.Duration `yaml:"upload_url_ttl"`
	PreviewUrlTTL     time.Duration `yaml:"preview_url_ttl"`
}

type Realtime struct {
	SendBuffer    int           `yaml:"send_buffer"`
	PingPeriod    time.Duration `yaml:"ping_period"`
	WriteDeadline time.Duration `yaml:"write_deadline"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	S3Cred S3Cred `yaml:"s3"`
	Email  Email  `yaml:"email"`
	JwtKey string `yaml:"jwt_key"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type S3Cred struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Email struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

// applyDefaults fills limits the yaml omitted. The defaults mirror the
// client-side contract: 10MB / 10 files on the chat surface, 5MB / 5 files
// on the photo surface, 24h upload URLs, 1h preview URLs.
func (c *Config) applyDefaults() {
	l := &c.Public.Limits
	if l.MaxBodyChars == 0 {
		l.MaxBodyChars = 2000
	}
	if l.MaxChatFileBytes == 0 {
		l.MaxChatFileBytes = 10 << 20
	}
	if l.MaxPhotoFileBytes == 0 {
		l.MaxPhotoFileBytes = 5 << 20
	}
	if l.MaxChatBatch == 0 {
		l.MaxChatBatch = 10
	}
	if l.MaxPhotoBatch == 0 {
		l.MaxPhotoBatch = 5
	}
	if l.UploadUrlTTL == 0 {
		l.UploadUrlTTL = 24 * time.Hour
	}
	if l.PreviewUrlTTL == 0 {
		l.PreviewUrlTTL = time.Hour
	}
	rt := &c.Public.Realtime
	if rt.SendBuffer == 0 {
		rt.SendBuffer = 128
	}
	if rt.PingPeriod == 0 {
		rt.PingPeriod = 30 * time.Second
	}
	if rt.WriteDeadline == 0 {
		rt.WriteDeadline = 10 * time.Second
	}
	if c.Public.Http.Port == 0 {
		c.Public.Http.Port = 8080
	}
	if c.Public.Http.JwtTTL == 0 {
		c.Public.Http.JwtTTL = 24 * time.Hour
	}
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}
