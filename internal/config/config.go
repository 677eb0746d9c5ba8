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
	Pg               Pg            `yaml:"pg"`
	Redis            Redis         `yaml:"redis"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"`
	ResetTokenMaxAge time.Duration `yaml:"reset_token_max_age"`
	SecureCookies    bool          `yaml:"secure_cookies"`
	FrontendHost     string        `yaml:"frontend_host"` // base for password-reset links
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Db       int    `yaml:"db"`
}

type Private struct {
	JwtSecret string `yaml:"jwt_secret"`
	Email     Email  `yaml:"email"`
}

type Email struct {
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	SenderName string `yaml:"sender_name"`
	Timeout    int    `yaml:"timeout"` // seconds
	SiteInbox  string `yaml:"site_inbox"`
}

func (c *Config) JwtSecret() string {
	return c.Private.JwtSecret
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder.
// A missing signing secret is a startup failure, not a per-request one.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		private.JwtSecret = secret
	}
	if private.JwtSecret == "" {
		panic("jwt secret is not configured")
	}

	cfg := &Config{public, private}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Public.AccessTokenTTL == 0 {
		c.Public.AccessTokenTTL = time.Hour
	}
	if c.Public.RefreshTokenTTL == 0 {
		c.Public.RefreshTokenTTL = 7 * 24 * time.Hour
	}
	if c.Public.ResetTokenMaxAge == 0 {
		c.Public.ResetTokenMaxAge = 15 * time.Minute
	}
	if c.Public.Redis.Addr == "" {
		c.Public.Redis.Addr = "localhost:6379"
	}
}
