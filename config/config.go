package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string
	DBPath      string
	LogLevel    string

	// FetchTimeout bounds the bulk listing feeds (MyHome, Acquaint, Daft);
	// LiveFetchTimeout bounds single-shot live lookups and WordPress reads.
	FetchTimeout     time.Duration
	LiveFetchTimeout time.Duration

	ImportInterval time.Duration
	ImportCron     string

	WordPressEndpointsFile string

	Feeds FeedsConfig
}

// FeedsConfig overrides feed endpoints, mainly for staging and tests.
type FeedsConfig struct {
	MyHomeBaseURL   string `yaml:"myhome_base_url"`
	MyHomePageSize  int    `yaml:"myhome_page_size"`
	AcquaintBaseURL string `yaml:"acquaint_base_url"`
	DaftBaseURL     string `yaml:"daft_base_url"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DBPath:                 getEnv("DB_PATH", "catalog.db"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		FetchTimeout:           time.Duration(getEnvInt("FETCH_TIMEOUT", 600)) * time.Second,
		LiveFetchTimeout:       time.Duration(getEnvInt("LIVE_FETCH_TIMEOUT", 30)) * time.Second,
		ImportInterval:         time.Duration(getEnvInt("IMPORT_INTERVAL_SEC", 3600)) * time.Second,
		ImportCron:             os.Getenv("IMPORT_CRON"),
		WordPressEndpointsFile: getEnv("WORDPRESS_ENDPOINTS_FILE", "config/wordpress_endpoints.txt"),
	}

	if err := cfg.loadFeedsFile(getEnv("FEEDS_CONFIG", "config/feeds.yaml")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFeedsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, &c.Feeds)
}

// WordPressEndpoints loads the candidate WordPress feed URLs, one per line.
// Loaded once at startup and passed by reference to whoever needs it; a
// missing file just means no WordPress coverage.
func (c *Config) WordPressEndpoints() ([]string, error) {
	f, err := os.Open(c.WordPressEndpointsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var endpoints []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		url := strings.TrimSpace(scanner.Text())
		if url == "" || strings.HasPrefix(url, "#") {
			continue
		}
		endpoints = append(endpoints, url)
	}
	return endpoints, scanner.Err()
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
