package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port          int    `yaml:"port"`
	LogDirectory  string `yaml:"logDir"`
	LogLevel      string `yaml:"logLevel"`
	DatabasePath  string `yaml:"dbPath"`
	SignsFile     string `yaml:"signsFile"` // empty uses the bundled table
	AllowedOrigin string `yaml:"allowedOrigin"`

	Predictor PredictorConfig `yaml:"predictor"`
	Camera    CameraConfig    `yaml:"camera"`
	Publish   PublishConfig   `yaml:"publish"`
	Display   DisplayConfig   `yaml:"display"`
}

type PredictorConfig struct {
	APIURL       string        `yaml:"apiURL"`
	APIKey       string        `yaml:"apiKey"`
	SignModel    string        `yaml:"signModel"`
	PotholeModel string        `yaml:"potholeModel"`
	Timeout      time.Duration `yaml:"timeout"`
	Retries      int           `yaml:"retries"`
	RetryWait    time.Duration `yaml:"retryWait"`
}

type CameraConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	MaxProbe int `yaml:"maxProbe"` // upper bound on indices tried by the camera probe
}

type PublishConfig struct {
	Interval   time.Duration `yaml:"interval"` // pause between loop iterations
	Topic      string        `yaml:"topic"`
	BufferSize int           `yaml:"bufferSize"`
}

type DisplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Port:          5000,
		LogDirectory:  filepath.Join(".", "logs"),
		LogLevel:      "info",
		DatabasePath:  filepath.Join(".", "data", "signs.db"),
		AllowedOrigin: "*",
		Predictor: PredictorConfig{
			APIURL:       "https://detect.roboflow.com",
			SignModel:    "indian-traffic-signboards-a0gtk/1",
			PotholeModel: "pothole-detection-qnlw9/1",
			Timeout:      10 * time.Second,
			Retries:      1,
			RetryWait:    200 * time.Millisecond,
		},
		Camera: CameraConfig{
			Width:    1280,
			Height:   720,
			MaxProbe: 10,
		},
		Publish: PublishConfig{
			Interval:   time.Second,
			Topic:      "latest_result",
			BufferSize: 16,
		},
		Display: DisplayConfig{
			Enabled: false,
			Title:   "frame",
		},
	}
}

// Load layers defaults, the optional YAML file named by CONFIG_FILE and the
// environment (including a .env file when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnvAsInt("PORT", c.Port)
	c.LogDirectory = getEnv("LOG_DIR", c.LogDirectory)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DatabasePath = getEnv("DB_PATH", c.DatabasePath)
	c.SignsFile = getEnv("SIGNS_FILE", c.SignsFile)
	c.AllowedOrigin = getEnv("ALLOWED_ORIGIN", c.AllowedOrigin)

	c.Predictor.APIURL = getEnv("ROBOFLOW_API_URL", c.Predictor.APIURL)
	c.Predictor.APIKey = getEnv("ROBOFLOW_API_KEY", c.Predictor.APIKey)
	c.Predictor.SignModel = getEnv("SIGN_MODEL_ID", c.Predictor.SignModel)
	c.Predictor.PotholeModel = getEnv("POTHOLE_MODEL_ID", c.Predictor.PotholeModel)
	c.Predictor.Timeout = getEnvAsDuration("PREDICTOR_TIMEOUT", c.Predictor.Timeout)
	c.Predictor.Retries = getEnvAsInt("PREDICTOR_RETRIES", c.Predictor.Retries)
	c.Predictor.RetryWait = getEnvAsDuration("PREDICTOR_RETRY_WAIT", c.Predictor.RetryWait)

	c.Camera.Width = getEnvAsInt("CAMERA_WIDTH", c.Camera.Width)
	c.Camera.Height = getEnvAsInt("CAMERA_HEIGHT", c.Camera.Height)
	c.Camera.MaxProbe = getEnvAsInt("CAMERA_MAX_PROBE", c.Camera.MaxProbe)

	c.Publish.Interval = getEnvAsDuration("PUBLISH_INTERVAL", c.Publish.Interval)
	c.Publish.Topic = getEnv("PUBLISH_TOPIC", c.Publish.Topic)
	c.Publish.BufferSize = getEnvAsInt("HUB_BUFFER", c.Publish.BufferSize)

	c.Display.Enabled = getEnvAsBool("DISPLAY_ENABLED", c.Display.Enabled)
	c.Display.Title = getEnv("DISPLAY_TITLE", c.Display.Title)
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid port %d", c.Port)
	case c.Publish.Interval <= 0:
		return fmt.Errorf("publish interval must be positive, got %s", c.Publish.Interval)
	case c.Publish.BufferSize <= 0:
		return fmt.Errorf("hub buffer must be positive, got %d", c.Publish.BufferSize)
	case strings.TrimSpace(c.Predictor.SignModel) == "":
		return errors.New("sign model id is empty")
	case strings.TrimSpace(c.Predictor.PotholeModel) == "":
		return errors.New("pothole model id is empty")
	case c.Predictor.Retries < 0:
		return fmt.Errorf("predictor retries must not be negative, got %d", c.Predictor.Retries)
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("invalid camera resolution %dx%d", c.Camera.Width, c.Camera.Height)
	case c.Camera.MaxProbe <= 0:
		return fmt.Errorf("camera probe limit must be positive, got %d", c.Camera.MaxProbe)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
