// Package conf loads the portal configuration from the environment (and an
// optional .env file) plus an optional TOML file describing the contest.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultAddr       = ":8090"
	DefaultBackendURL = "http://localhost:5000"
	DefaultConfigPath = "portal.toml"
	DefaultEditorURL  = "https://cdnjs.cloudflare.com/ajax/libs/monaco-editor/0.44.0/min/vs"

	EnvDev = "dev"
)

type Config struct {
	Addr           string
	BackendURL     string
	JWTKey         []byte
	Env            string
	LogLevel       slog.Level
	HTTPTimeout    time.Duration
	AllowedOrigins []string
	OTLPEndpoint   string
	// EditorURL is the Monaco "vs" directory; empty keeps the plain editor.
	EditorURL string

	Contest Contest
	Polling Polling
}

// Contest mirrors the [contest] table of the TOML file.
type Contest struct {
	ProblemCount int      `toml:"problem_count"`
	ProblemNames []string `toml:"problem_names"` // index 0 is problem 1
	Languages    []string `toml:"languages"`

	WarningSeconds   int `toml:"warning_seconds"`
	CriticalSeconds  int `toml:"critical_seconds"`
	EndButtonSeconds int `toml:"end_button_seconds"`
}

// Polling mirrors the [polling] table; all values are seconds.
type Polling struct {
	AdminSeconds    int `toml:"admin_seconds"`
	StatusSeconds   int `toml:"status_seconds"`
	AutosaveSeconds int `toml:"autosave_seconds"`
	TickSeconds     int `toml:"tick_seconds"`
}

type fileConfig struct {
	Contest Contest `toml:"contest"`
	Polling Polling `toml:"polling"`
}

// Names returns the configured problem names keyed by problem id.
func (c Contest) Names() map[int]string {
	names := make(map[int]string, len(c.ProblemNames))
	for i, name := range c.ProblemNames {
		names[i+1] = name
	}
	return names
}

func (c Contest) Warning() time.Duration   { return seconds(c.WarningSeconds) }
func (c Contest) Critical() time.Duration  { return seconds(c.CriticalSeconds) }
func (c Contest) EndButton() time.Duration { return seconds(c.EndButtonSeconds) }

func (p Polling) Admin() time.Duration    { return seconds(p.AdminSeconds) }
func (p Polling) Status() time.Duration   { return seconds(p.StatusSeconds) }
func (p Polling) Autosave() time.Duration { return seconds(p.AutosaveSeconds) }
func (p Polling) Tick() time.Duration     { return seconds(p.TickSeconds) }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Load reads .env (if present), the process environment and the TOML file
// named by PORTAL_CONFIG.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, relying on environment variables")
	}
	return FromEnv(os.Getenv, os.ReadFile)
}

// FromEnv builds a Config from the given lookups.
func FromEnv(getenv func(string) string, readFile func(string) ([]byte, error)) (Config, error) {
	cfg := Config{
		Addr:         getEnv(getenv, "PORTAL_ADDR", DefaultAddr),
		BackendURL:   strings.TrimRight(getEnv(getenv, "BACKEND_URL", DefaultBackendURL), "/"),
		JWTKey:       []byte(getenv("PORTAL_JWT_KEY")),
		Env:          getEnv(getenv, "PORTAL_ENV", EnvDev),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		EditorURL:    getEnv(getenv, "PORTAL_EDITOR_URL", DefaultEditorURL),
	}
	if cfg.EditorURL == "off" {
		cfg.EditorURL = ""
	}

	if err := validateBackendURL(cfg.BackendURL); err != nil {
		return Config{}, err
	}

	level, err := parseLevel(getEnv(getenv, "LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	timeout, err := time.ParseDuration(getEnv(getenv, "HTTP_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if origins := getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	if len(cfg.JWTKey) == 0 {
		if cfg.Env != EnvDev {
			return Config{}, errors.New("PORTAL_JWT_KEY is not set")
		}
		cfg.JWTKey = []byte("dev-only-portal-key")
	}

	path := getEnv(getenv, "PORTAL_CONFIG", DefaultConfigPath)
	var fc fileConfig
	data, err := readFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse %s failed: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s failed: %w", path, err)
	}
	cfg.Contest = fc.Contest
	cfg.Polling = fc.Polling
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	c := &cfg.Contest
	if len(c.ProblemNames) == 0 {
		c.ProblemNames = []string{
			"Task 1: Signal Decoder",
			"Task 2: Reactor Frequency",
			"Task 3: Vent Stack",
			"Task 4: O2 Tree Scan",
			"Task 5: Sabotage Paths",
			"Task 6: Emergency Protocol",
		}
	}
	if c.ProblemCount == 0 {
		c.ProblemCount = len(c.ProblemNames)
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"python", "cpp", "c", "java"}
	}
	if c.WarningSeconds == 0 {
		c.WarningSeconds = 600
	}
	if c.CriticalSeconds == 0 {
		c.CriticalSeconds = 300
	}
	if c.EndButtonSeconds == 0 {
		c.EndButtonSeconds = 600
	}

	p := &cfg.Polling
	if p.AdminSeconds == 0 {
		p.AdminSeconds = 15
	}
	if p.StatusSeconds == 0 {
		p.StatusSeconds = 5
	}
	if p.AutosaveSeconds == 0 {
		p.AutosaveSeconds = 30
	}
	if p.TickSeconds == 0 {
		p.TickSeconds = 1
	}
}

func getEnv(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if n, err := strconv.Atoi(s); err == nil {
		return slog.Level(n), nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func validateBackendURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("BACKEND_URL must use http or https")
	}
	if u.Host == "" {
		return errors.New("BACKEND_URL must include a host")
	}
	return nil
}
