package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvUploadURL      = "CAROUSEL_UPLOAD_URL"
	EnvUploadPassword = "CAROUSEL_UPLOAD_PASSWORD"
)

// Config represents the pipeline configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Fonts    FontsConfig    `yaml:"fonts"`
	Upload   UploadConfig   `yaml:"upload"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

type PathsConfig struct {
	Calendar string `yaml:"calendar"`
	Images   string `yaml:"images"`
	Composed string `yaml:"composed"`
	Thanks   string `yaml:"thanks"`
	BulkPost string `yaml:"bulk_post"`
}

// FontsConfig lists candidate font files per role; the first one that parses wins.
type FontsConfig struct {
	Title   []string `yaml:"title"`
	Content []string `yaml:"content"`
	// TitleIndex and ContentIndex select the face inside .ttc/.otc collections.
	TitleIndex   int `yaml:"title_index"`
	ContentIndex int `yaml:"content_index"`
}

type UploadConfig struct {
	URL          string        `yaml:"url"`
	Password     string        `yaml:"password"`
	FolderPrefix string        `yaml:"folder_prefix"`
	Delay        time.Duration `yaml:"delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

type PipelineConfig struct {
	Workers  int `yaml:"workers"`
	PostHour int `yaml:"post_hour"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Calendar: "output/calendar.csv",
			Images:   "output/images",
			Composed: "output/composed",
			Thanks:   "thanksmessage",
			BulkPost: "output/一括投稿データ.csv",
		},
		Upload: UploadConfig{
			FolderPrefix: "juku_post",
			Delay:        500 * time.Millisecond,
			Timeout:      30 * time.Second,
		},
		Pipeline: PipelineConfig{
			Workers:  1,
			PostHour: 18,
		},
	}
}

// Load reads the configuration file on top of the defaults. A missing file is
// not an error. A .env file in the working directory is loaded first and
// environment variables override upload credentials.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvUploadURL); v != "" {
		c.Upload.URL = v
	}
	if v := os.Getenv(EnvUploadPassword); v != "" {
		c.Upload.Password = v
	}
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if c.Paths.Calendar == "" {
		return fmt.Errorf("paths.calendar is required")
	}
	if c.Paths.Images == "" {
		return fmt.Errorf("paths.images is required")
	}
	if c.Paths.Composed == "" {
		return fmt.Errorf("paths.composed is required")
	}
	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("pipeline.workers must be at least 1")
	}
	if c.Pipeline.PostHour < 0 || c.Pipeline.PostHour > 23 {
		return fmt.Errorf("pipeline.post_hour must be between 0 and 23")
	}
	if c.Upload.Delay < 0 {
		return fmt.Errorf("upload.delay must not be negative")
	}
	if c.Upload.URL != "" && c.Upload.FolderPrefix == "" {
		return fmt.Errorf("upload.folder_prefix is required when upload.url is set")
	}
	return nil
}

// UploadFolder returns the remote folder for a run started at now.
func (c *Config) UploadFolder(now time.Time) string {
	return fmt.Sprintf("%s_%04d_%02d", c.Upload.FolderPrefix, now.Year(), int(now.Month()))
}
