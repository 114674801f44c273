package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host           string
	Port           int
	AllowOrigins   []string
	LogLevel       string
	LogFile        string
	MaxBodyMB      int
	MappingFile    string  // empty: built-in mapping
	FuzzyThreshold float64 // minimum similarity for a fuzzy match

	SSE     SSEConfig
	Browser BrowserConfig
}

type SSEConfig struct {
	URL            string // empty disables the listener
	Insecure       bool
	MaxReconnects  int
	ReconnectDelay time.Duration
	KeepAlive      time.Duration
}

type BrowserConfig struct {
	DebuggerURL string
	Headless    bool
	Timeout     time.Duration
	StartURL    string // page opened at startup, if set
}

// Load reads the environment, after merging an optional .env file (existing
// variables win).
func Load() Config {
	_ = godotenv.Load(getenv("ENV_FILE", ".env"))

	return Config{
		Host:           getenv("HOST", "127.0.0.1"),
		Port:           getInt("PORT", 4216),
		AllowOrigins:   splitList(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        getenv("LOG_FILE", "logs/autofill-service.log"),
		MaxBodyMB:      getInt("MAX_BODY_MB", 16),
		MappingFile:    getenv("FIELD_MAPPING_FILE", ""),
		FuzzyThreshold: getFloat("FUZZY_THRESHOLD", 0.8),
		SSE: SSEConfig{
			URL:            getenv("SSE_URL", "https://localhost:4215/verifier-sdk/sse/read/chrome_ext"),
			Insecure:       getBool("SSE_INSECURE", true),
			MaxReconnects:  getInt("SSE_MAX_RECONNECTS", 5),
			ReconnectDelay: getDuration("SSE_RECONNECT_DELAY", time.Second),
			KeepAlive:      getDuration("SSE_KEEPALIVE", 25*time.Second),
		},
		Browser: BrowserConfig{
			DebuggerURL: getenv("BROWSER_DEBUGGER_URL", ""),
			Headless:    getBool("BROWSER_HEADLESS", false),
			Timeout:     getDuration("BROWSER_TIMEOUT", 30*time.Second),
			StartURL:    getenv("BROWSER_START_URL", ""),
		},
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (c Config) MaxBodyBytes() int64 { return int64(c.MaxBodyMB) * 1024 * 1024 }

// getenv distinguishes unset from empty so SSE_URL= can switch the listener off.
func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if i, err := strconv.Atoi(strings.TrimSpace(os.Getenv(k))); err == nil {
		return i
	}
	return def
}

func getFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(k)), 64); err == nil {
		return f
	}
	return def
}

func getBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil {
		return d
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
