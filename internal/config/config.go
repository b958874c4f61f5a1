package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// YouTube Data API
	YouTubeAPIKey  string
	YouTubeBaseURL string

	// Fetching
	BatchSize     int
	MaxAttempts   int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BatchInterval time.Duration
	HTTPTimeout   time.Duration
	RunTimeout    time.Duration

	LogLevel string

	// SFTP
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPKnownHosts            string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	return Config{
		YouTubeAPIKey:  strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")),
		YouTubeBaseURL: getenv("YOUTUBE_API_BASE", "https://www.googleapis.com/youtube/v3"),

		BatchSize:     getenvInt("FETCH_BATCH_SIZE", 50),
		MaxAttempts:   getenvInt("FETCH_MAX_ATTEMPTS", 3),
		BaseDelay:     getenvDuration("FETCH_BASE_DELAY", 500*time.Millisecond),
		MaxDelay:      getenvDuration("FETCH_MAX_DELAY", 8*time.Second),
		BatchInterval: getenvDuration("FETCH_BATCH_INTERVAL", 100*time.Millisecond),
		HTTPTimeout:   getenvDuration("HTTP_TIMEOUT", 30*time.Second),
		RunTimeout:    getenvDuration("RUN_TIMEOUT", 10*time.Minute),

		LogLevel: getenv("LOG_LEVEL", "info"),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/inbound"),
		SFTPKnownHosts:            os.Getenv("SFTP_KNOWN_HOSTS"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", false),
	}
}

// Validate checks what a run needs before any request goes out.
func (c Config) Validate() error {
	var errs []error
	if c.YouTubeAPIKey == "" {
		errs = append(errs, errors.New("YOUTUBE_API_KEY is not set (or pass -api-key)"))
	}
	if c.BatchSize < 1 || c.BatchSize > 50 {
		errs = append(errs, fmt.Errorf("FETCH_BATCH_SIZE must be between 1 and 50, got %d", c.BatchSize))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts))
	}
	if c.BaseDelay > c.MaxDelay {
		errs = append(errs, fmt.Errorf("FETCH_BASE_DELAY %s exceeds FETCH_MAX_DELAY %s", c.BaseDelay, c.MaxDelay))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getenvDuration accepts Go durations ("250ms", "2m") or plain seconds.
func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}
