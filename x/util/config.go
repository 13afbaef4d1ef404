package util

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-yaml/yaml"
)

// Config is the gateway base configuration. It is loaded exactly once at
// startup; nothing re-reads the environment after Load returns.
type Config struct {
	Server    Server    `yaml:"server"`
	Security  Security  `yaml:"security"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Crm       Crm       `yaml:"crm"`
	Admins    []Admin   `yaml:"admins"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	Production    bool   `yaml:"production"`
	SiteFQDN      string `yaml:"siteFqdn"`
}

type Security struct {
	WebhookSecret   string   `yaml:"webhookSecret"`
	SignatureHeader string   `yaml:"signatureHeader"`
	CsrfSecret      string   `yaml:"csrfSecret"`
	SessionSecret   string   `yaml:"sessionSecret"`
	AllowedOrigins  []string `yaml:"allowedOrigins"`
	RecaptchaSecret string   `yaml:"recaptchaSecret"`
}

type Crm struct {
	BaseURL    string `yaml:"baseUrl"`
	APIKey     string `yaml:"apiKey"`
	LocationID string `yaml:"locationId"`
}

type Admin struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"` // bcrypt
}

// RateLimit holds per-limit-type window overrides. Zero values mean
// "use the built-in default for that type".
type RateLimit struct {
	Disabled bool                   `yaml:"disabled"`
	Types    map[string]LimitConfig `yaml:"types"`
}

type LimitConfig struct {
	WindowMs    int64 `yaml:"windowMs"`
	MaxRequests int   `yaml:"maxRequests"`
}

var limitTypeNames = []string{
	"booking_create",
	"auth_login",
	"payment_create",
	"api_general",
	"public",
	"admin",
}

// Load loads gateway config from given path and applies environment
// overrides on top of it.
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("failed to open configuration file:", err)
		return err
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(&c)
	if err != nil {
		log.Fatal("failed to load configuration file:", err)
		return err
	}

	c.applyEnvOverrides()

	return nil
}

func (c *Config) applyEnvOverrides() {
	if c.RateLimit.Types == nil {
		c.RateLimit.Types = map[string]LimitConfig{}
	}

	if v := os.Getenv("RATE_LIMIT_DISABLED"); v == "true" || v == "1" {
		c.RateLimit.Disabled = true
	}

	for _, name := range limitTypeNames {
		envKey := "RATE_LIMIT_" + strings.ToUpper(name)
		lc := c.RateLimit.Types[name]
		if v := os.Getenv(envKey + "_WINDOW_MS"); v != "" {
			if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
				lc.WindowMs = ms
			}
		}
		if v := os.Getenv(envKey + "_MAX"); v != "" {
			if max, err := strconv.Atoi(v); err == nil {
				lc.MaxRequests = max
			}
		}
		c.RateLimit.Types[name] = lc
	}

	if v := os.Getenv("WEBHOOK_SECRET"); v != "" {
		c.Security.WebhookSecret = v
	}
	if v := os.Getenv("CSRF_SECRET"); v != "" {
		c.Security.CsrfSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Security.SessionSecret = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Security.AllowedOrigins = strings.Split(v, ",")
	}
}
