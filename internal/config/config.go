package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string        `yaml:"env"`
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	OxiDB   OxiDBConfig   `yaml:"oxidb"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigin      string        `yaml:"cors_origin"`
	StaticDir       string        `yaml:"static_dir"`
	UploadDir       string        `yaml:"upload_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver       string        `yaml:"driver"` // oxidb, mongo or memory
	VerifyWrites bool          `yaml:"verify_writes"`
	Timeout      time.Duration `yaml:"timeout"`
}

type OxiDBConfig struct {
	Host      string        `yaml:"host"`
	Port      int           `yaml:"port"`
	PoolSize  int           `yaml:"pool_size"`
	Keepalive time.Duration `yaml:"keepalive"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type ArchiveConfig struct {
	Driver string   `yaml:"driver"` // empty (off), oxidb or s3
	Bucket string   `yaml:"bucket"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type LogConfig struct {
	Level    string `yaml:"level"`
	GelfAddr string `yaml:"gelf_addr"`
}

func Default() *Config {
	return &Config{
		Env: EnvDevelopment,
		HTTP: HTTPConfig{
			Addr:            ":3001",
			CORSOrigin:      "http://localhost:3000",
			StaticDir:       "client/build",
			UploadDir:       "uploads",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Driver:       "oxidb",
			VerifyWrites: true,
			Timeout:      10 * time.Second,
		},
		OxiDB: OxiDBConfig{
			Host:      "127.0.0.1",
			Port:      4444,
			PoolSize:  3,
			Keepalive: 10 * time.Second,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017/anketa_db",
			Database: "anketa_db",
		},
		Archive: ArchiveConfig{
			S3: S3Config{Region: "us-east-1"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	c.HTTP.Addr = getEnv("ANKETA_ADDR", c.HTTP.Addr)
	c.Env = getEnv("NODE_ENV", c.Env)
	c.Env = getEnv("ANKETA_ENV", c.Env)
	c.HTTP.CORSOrigin = getEnv("ANKETA_CORS_ORIGIN", c.HTTP.CORSOrigin)
	c.HTTP.StaticDir = getEnv("ANKETA_STATIC_DIR", c.HTTP.StaticDir)
	c.HTTP.UploadDir = getEnv("ANKETA_UPLOAD_DIR", c.HTTP.UploadDir)

	c.Store.Driver = getEnv("ANKETA_STORE", c.Store.Driver)
	c.Store.VerifyWrites = getEnvBool("ANKETA_VERIFY_WRITES", c.Store.VerifyWrites)

	c.OxiDB.Host = getEnv("OXIDB_HOST", c.OxiDB.Host)
	c.OxiDB.Port = getEnvInt("OXIDB_PORT", c.OxiDB.Port)
	c.OxiDB.PoolSize = getEnvInt("ANKETA_POOL_SIZE", c.OxiDB.PoolSize)

	c.Mongo.URI = getEnv("MONGODB_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGODB_DATABASE", c.Mongo.Database)

	c.Archive.Driver = getEnv("ANKETA_ARCHIVE", c.Archive.Driver)
	c.Archive.Bucket = getEnv("ANKETA_ARCHIVE_BUCKET", c.Archive.Bucket)
	c.Archive.S3.Endpoint = getEnv("S3_ENDPOINT", c.Archive.S3.Endpoint)
	c.Archive.S3.Region = getEnv("S3_REGION", c.Archive.S3.Region)
	c.Archive.S3.AccessKey = getEnv("S3_ACCESS_KEY", c.Archive.S3.AccessKey)
	c.Archive.S3.SecretKey = getEnv("S3_SECRET_KEY", c.Archive.S3.SecretKey)

	c.Log.Level = getEnv("ANKETA_LOG_LEVEL", c.Log.Level)
	c.Log.GelfAddr = getEnv("GELF_ADDR", c.Log.GelfAddr)
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "oxidb", "mongo", "memory":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unknown driver %q", c.Store.Driver))
	}
	switch c.Archive.Driver {
	case "", "oxidb":
	case "s3":
		if c.Archive.Bucket == "" {
			errs = append(errs, errors.New("archive.bucket: required for s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("archive.driver: unknown driver %q", c.Archive.Driver))
	}
	if c.Archive.Driver == "oxidb" && c.Store.Driver != "oxidb" {
		errs = append(errs, errors.New("archive.driver: oxidb archive requires the oxidb store"))
	}
	if c.OxiDB.PoolSize < 1 {
		errs = append(errs, errors.New("oxidb.pool_size: must be at least 1"))
	}
	return errors.Join(errs...)
}

func (c *Config) Development() bool { return c.Env == EnvDevelopment }

func (c *Config) Production() bool { return c.Env == EnvProduction }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return fallback
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
