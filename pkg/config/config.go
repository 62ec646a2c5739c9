package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/sourcedocs/pkg/cache"
	"github.com/platinummonkey/sourcedocs/pkg/docs"
	"github.com/platinummonkey/sourcedocs/pkg/entity"
	"github.com/platinummonkey/sourcedocs/pkg/observability"
	"github.com/platinummonkey/sourcedocs/pkg/storage"
	"github.com/platinummonkey/sourcedocs/pkg/store"
)

// EnvConfigPath names the YAML file to load when no path is given.
const EnvConfigPath = "SOURCEDOCS_CONFIG"

// ConfigFileNames are searched in the working directory when neither a
// path nor SOURCEDOCS_CONFIG is set.
var ConfigFileNames = []string{"sourcedocs.yaml", "sourcedocs.yml", ".sourcedocs.yaml", ".sourcedocs.yml"}

// Config holds all application configuration
type Config struct {
	Project       ProjectConfig       `yaml:"project"`
	Build         BuildConfig         `yaml:"build"`
	Output        OutputConfig        `yaml:"output"`
	Cache         CacheConfig         `yaml:"cache"`
	Server        ServerConfig        `yaml:"server"`
	Watch         WatchConfig         `yaml:"watch"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ProjectConfig locates the parser output
type ProjectConfig struct {
	Root    string `yaml:"root"`
	Payload string `yaml:"payload"`
}

// BuildConfig controls rendering
type BuildConfig struct {
	Title     string             `yaml:"title"`
	Layout    docs.Layout        `yaml:"layout"`
	Format    docs.Format        `yaml:"format"`
	MinAccess entity.AccessLevel `yaml:"min_access"`
	Workers   int                `yaml:"workers"`

	// Merge behaviour; both default to the historical output.
	AttachOnce     bool `yaml:"attach_once"`
	EncounterOrder bool `yaml:"encounter_order"`
}

// OutputConfig selects where pages and the docset index go
type OutputConfig struct {
	Sink      string   `yaml:"sink"` // filesystem or s3
	Directory string   `yaml:"directory"`
	Docset    string   `yaml:"docset"`
	S3        S3Config `yaml:"s3"`
}

// S3Config holds bucket settings for the s3 sink
type S3Config struct {
	Endpoint     string `yaml:"endpoint"`
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// CacheConfig configures the rendered page cache
type CacheConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Size          int           `yaml:"size"`
	TTL           time.Duration `yaml:"ttl"`
	RedisURL      string        `yaml:"redis_url"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Addr is the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// WatchConfig controls automatic rebuilds
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
	Schedule string        `yaml:"schedule"` // cron expression, empty disables
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel `yaml:"log_level"`
	MetricsEnabled bool                   `yaml:"metrics_enabled"`

	OTelEnabled        bool    `yaml:"otel_enabled"`
	OTelEndpoint       string  `yaml:"otel_endpoint"`
	OTelServiceName    string  `yaml:"otel_service_name"`
	OTelServiceVersion string  `yaml:"otel_service_version"`
	OTelInsecure       bool    `yaml:"otel_insecure"`
	OTelSampleRatio    float64 `yaml:"otel_sample_ratio"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Project: ProjectConfig{
			Root: ".",
		},
		Build: BuildConfig{
			Layout:    docs.MultiPage,
			Format:    docs.Markdown,
			MinAccess: entity.Public,
			Workers:   4,
		},
		Output: OutputConfig{
			Sink:      "filesystem",
			Directory: "docs",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Cache: CacheConfig{
			Size: cache.DefaultMaxEntries,
			TTL:  cache.DefaultTTL,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Observability: ObservabilityConfig{
			LogLevel:        observability.InfoLevel,
			MetricsEnabled:  true,
			OTelEndpoint:    "localhost:4317",
			OTelServiceName: observability.DefaultServiceName,
			OTelInsecure:    true,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or SOURCEDOCS_CONFIG, or a well-known file name in the working
// directory), then SOURCEDOCS_* environment variables, and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnv(EnvConfigPath, "")
	}
	if path == "" {
		path = findConfigFile(".")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields whose SOURCEDOCS_* variable is set
func (c *Config) applyEnv() error {
	var errs []error
	parse := func(key string, target interface{ UnmarshalText([]byte) error }) {
		if value := os.Getenv(key); value != "" {
			if err := target.UnmarshalText([]byte(value)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	c.Project.Root = getEnv("SOURCEDOCS_PROJECT_ROOT", c.Project.Root)
	c.Project.Payload = getEnv("SOURCEDOCS_PAYLOAD", c.Project.Payload)

	c.Build.Title = getEnv("SOURCEDOCS_TITLE", c.Build.Title)
	parse("SOURCEDOCS_LAYOUT", &c.Build.Layout)
	parse("SOURCEDOCS_FORMAT", &c.Build.Format)
	parse("SOURCEDOCS_MIN_ACCESS", &c.Build.MinAccess)
	c.Build.Workers = getEnvInt("SOURCEDOCS_WORKERS", c.Build.Workers)
	c.Build.AttachOnce = getEnvBool("SOURCEDOCS_ATTACH_ONCE", c.Build.AttachOnce)
	c.Build.EncounterOrder = getEnvBool("SOURCEDOCS_ENCOUNTER_ORDER", c.Build.EncounterOrder)

	c.Output.Sink = getEnv("SOURCEDOCS_SINK", c.Output.Sink)
	c.Output.Directory = getEnv("SOURCEDOCS_OUTPUT_DIR", c.Output.Directory)
	c.Output.Docset = getEnv("SOURCEDOCS_DOCSET", c.Output.Docset)
	c.Output.S3.Endpoint = getEnv("SOURCEDOCS_S3_ENDPOINT", c.Output.S3.Endpoint)
	c.Output.S3.Region = getEnv("SOURCEDOCS_S3_REGION", c.Output.S3.Region)
	c.Output.S3.Bucket = getEnv("SOURCEDOCS_S3_BUCKET", c.Output.S3.Bucket)
	c.Output.S3.Prefix = getEnv("SOURCEDOCS_S3_PREFIX", c.Output.S3.Prefix)
	c.Output.S3.AccessKey = getEnv("SOURCEDOCS_S3_ACCESS_KEY", c.Output.S3.AccessKey)
	c.Output.S3.SecretKey = getEnv("SOURCEDOCS_S3_SECRET_KEY", c.Output.S3.SecretKey)
	c.Output.S3.UsePathStyle = getEnvBool("SOURCEDOCS_S3_USE_PATH_STYLE", c.Output.S3.UsePathStyle)

	c.Cache.Enabled = getEnvBool("SOURCEDOCS_CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.Size = getEnvInt("SOURCEDOCS_CACHE_SIZE", c.Cache.Size)
	c.Cache.TTL = getEnvDuration("SOURCEDOCS_CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisURL = getEnv("SOURCEDOCS_REDIS_URL", c.Cache.RedisURL)
	c.Cache.RedisPassword = getEnv("SOURCEDOCS_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("SOURCEDOCS_REDIS_DB", c.Cache.RedisDB)

	c.Server.Host = getEnv("SOURCEDOCS_HOST", c.Server.Host)
	c.Server.Port = getEnv("SOURCEDOCS_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("SOURCEDOCS_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("SOURCEDOCS_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("SOURCEDOCS_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("SOURCEDOCS_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Watch.Enabled = getEnvBool("SOURCEDOCS_WATCH", c.Watch.Enabled)
	c.Watch.Debounce = getEnvDuration("SOURCEDOCS_WATCH_DEBOUNCE", c.Watch.Debounce)
	c.Watch.Schedule = getEnv("SOURCEDOCS_SCHEDULE", c.Watch.Schedule)

	parse("SOURCEDOCS_LOG_LEVEL", &c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("SOURCEDOCS_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("SOURCEDOCS_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("SOURCEDOCS_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("SOURCEDOCS_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("SOURCEDOCS_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("SOURCEDOCS_OTEL_INSECURE", c.Observability.OTelInsecure)
	c.Observability.OTelSampleRatio = getEnvFloat("SOURCEDOCS_OTEL_SAMPLE_RATIO", c.Observability.OTelSampleRatio)

	return errors.Join(errs...)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if !c.Build.MinAccess.Valid() {
		return fmt.Errorf("invalid min access level: %d", c.Build.MinAccess)
	}
	if c.Build.Workers < 0 {
		return fmt.Errorf("build workers must not be negative")
	}

	switch c.Output.Sink {
	case "filesystem":
		if c.Output.Directory == "" {
			return fmt.Errorf("output directory is required for the filesystem sink")
		}
	case "s3":
		if c.Output.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required for the s3 sink")
		}
	default:
		return fmt.Errorf("invalid sink type: %s (must be filesystem or s3)", c.Output.Sink)
	}

	if c.Cache.Enabled && c.Cache.Size < 1 {
		return fmt.Errorf("cache size must be at least 1 when the cache is enabled")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch debounce must not be negative")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}
	if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("OpenTelemetry sample ratio must be within [0, 1]")
	}

	return nil
}

// DocsOptions maps the build section onto generator options
func (c *Config) DocsOptions() docs.Options {
	return docs.Options{
		Layout:    c.Build.Layout,
		Format:    c.Build.Format,
		MinAccess: c.Build.MinAccess,
		Title:     c.Build.Title,
		Workers:   c.Build.Workers,
	}
}

// MergeOptions maps the build section onto merge options
func (c *Config) MergeOptions() store.MergeOptions {
	return store.MergeOptions{
		AttachOnce:     c.Build.AttachOnce,
		EncounterOrder: c.Build.EncounterOrder,
	}
}

// StorageConfig maps the output section onto sink configuration
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{
		Type:           c.Output.Sink,
		FilesystemRoot: c.Output.Directory,
		S3Endpoint:     c.Output.S3.Endpoint,
		S3Region:       c.Output.S3.Region,
		S3Bucket:       c.Output.S3.Bucket,
		S3Prefix:       c.Output.S3.Prefix,
		S3AccessKey:    c.Output.S3.AccessKey,
		S3SecretKey:    c.Output.S3.SecretKey,
		S3UsePathStyle: c.Output.S3.UsePathStyle,
	}
}

// RedisConfig maps the cache section onto the Redis tier configuration
func (c *Config) RedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		URL:      c.Cache.RedisURL,
		Password: c.Cache.RedisPassword,
		DB:       c.Cache.RedisDB,
		TTL:      c.Cache.TTL,
	}
}

// OTelConfig maps the observability section onto OpenTelemetry settings
func (c *Config) OTelConfig() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Observability.OTelEnabled,
		Endpoint:       c.Observability.OTelEndpoint,
		ServiceName:    c.Observability.OTelServiceName,
		ServiceVersion: c.Observability.OTelServiceVersion,
		Insecure:       c.Observability.OTelInsecure,
		SampleRatio:    c.Observability.OTelSampleRatio,
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns a float environment variable or a default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
