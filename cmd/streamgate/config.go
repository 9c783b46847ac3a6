package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Mahendrakumar19/streamgate/internal/logger"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultLMSAddr      = "http://localhost:8080"
	defaultOriginAddr   = "http://localhost:9000"
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the streamgate service will be run
	ListenAddr string

	// LMS (Moodle) address for enrollment lookups
	LMSAddr string

	// LMS web-service token used on every enrollment call
	LMSToken string

	// Origin media store address the proxy streams from
	OriginAddr string

	// Access credential the origin expects on every fetch
	OriginToken string

	// Secret key to sign video access and refresh tokens
	SecretKey string

	// Secret the marketplace front end signs session cookies with
	SessionSecret string

	// Browser origin allowed to play video, empty means any
	AllowedOrigin string

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		LMSAddr:     defaultLMSAddr,
		OriginAddr:  defaultOriginAddr,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		c.LoadEnv(func(key string) string {
			return envMap[key]
		})
		return nil
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) {
		return func(value string) {
			if value != "" {
				*o = value
			}
		}
	}

	envMap := map[string]func(string){
		"RUN_ADDRESS":         setString(&c.ListenAddr),
		"LOG_LEVEL":           setString(&c.LogLevel),
		"LMS_ADDRESS":         setString(&c.LMSAddr),
		"LMS_WS_TOKEN":        setString(&c.LMSToken),
		"ORIGIN_ADDRESS":      setString(&c.OriginAddr),
		"ORIGIN_ACCESS_TOKEN": setString(&c.OriginToken),
		"SECRET_KEY":          setString(&c.SecretKey),
		"SESSION_SECRET":      setString(&c.SessionSecret),
		"ALLOWED_ORIGIN":      setString(&c.AllowedOrigin),
		"ENVIRONMENT":         setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		parseFn(getenv(key))
	}
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("streamgate", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVar(&c.LMSAddr, "lms", c.LMSAddr, "LMS address for enrollment lookups")
	fs.StringVar(&c.LMSToken, "lms-token", c.LMSToken, "LMS web-service token")
	fs.StringVar(&c.OriginAddr, "origin", c.OriginAddr, "Origin media store address")
	fs.StringVar(&c.OriginToken, "origin-token", c.OriginToken, "Origin access credential")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign video tokens")
	fs.StringVar(&c.SessionSecret, "session-secret", c.SessionSecret, "Secret the platform signs session cookies with")
	fs.StringVar(&c.AllowedOrigin, "allowed-origin", c.AllowedOrigin, "Browser origin allowed to play video")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
