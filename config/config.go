package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBPath         string
	BaseURL        string
	FetchDelay     time.Duration
	HTTPTimeout    time.Duration
	WarehouseDBURL string
	APIAddr        string
	Scheduler      SchedulerConfig
	Regions        []*RegionConfig
}

type SchedulerConfig struct {
	Cron     string
	Interval time.Duration
}

// RegionConfig is one named bounding-box collection target, loaded from
// config/regions/*.yaml. MaxPages caps how many page requests a single
// collection pass may issue for the region.
type RegionConfig struct {
	Name     string  `yaml:"name"`
	NELat    float64 `yaml:"ne_lat"`
	NELng    float64 `yaml:"ne_lng"`
	SWLat    float64 `yaml:"sw_lat"`
	SWLng    float64 `yaml:"sw_lng"`
	Zoom     int     `yaml:"zoom"`
	MaxPages int     `yaml:"max_pages"`
}

const defaultBaseURL = "https://www.nemoapp.kr/api/store/search-list"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "data/nemostore.db"),
		BaseURL:        getEnv("NEMO_BASE_URL", defaultBaseURL),
		FetchDelay:     time.Duration(getEnvInt("FETCH_DELAY_MS", 500)) * time.Millisecond,
		HTTPTimeout:    time.Duration(getEnvInt("HTTP_TIMEOUT_S", 15)) * time.Second,
		WarehouseDBURL: os.Getenv("WAREHOUSE_DB_URL"),
		APIAddr:        getEnv("API_ADDR", ":8080"),
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("COLLECT_CRON"),
		},
	}

	if interval := os.Getenv("COLLECT_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadRegionConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadRegionConfigs() error {
	configDir := "config/regions"
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var region RegionConfig
		if err := yaml.Unmarshal(data, &region); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if region.Name == "" {
			return fmt.Errorf("%s: region name is required", path)
		}
		if region.MaxPages <= 0 {
			region.MaxPages = 10
		}

		c.Regions = append(c.Regions, &region)
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
