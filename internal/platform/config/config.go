package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/janisto/pipeline-responder/internal/platform/logging"
)

// Built-in values used when neither the file, the environment nor a flag sets one.
const (
	DefaultPort         = "8080"
	DefaultRootMessage  = "App is running!"
	DefaultHelloMessage = "Openshift Pipe Line Testing"
	DefaultLogLevel     = "info"
)

// Config is the resolved server configuration.
type Config struct {
	Port         string `yaml:"port"`
	RootMessage  string `yaml:"rootMessage"`
	HelloMessage string `yaml:"helloMessage"`
	LogLevel     string `yaml:"logLevel"`
	ProjectID    string `yaml:"projectId"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		RootMessage:  DefaultRootMessage,
		HelloMessage: DefaultHelloMessage,
		LogLevel:     DefaultLogLevel,
	}
}

// fileConfig uses pointers so an explicit empty message in YAML can be told
// apart from an absent key.
type fileConfig struct {
	Port         *string `yaml:"port"`
	RootMessage  *string `yaml:"rootMessage"`
	HelloMessage *string `yaml:"helloMessage"`
	LogLevel     *string `yaml:"logLevel"`
	ProjectID    *string `yaml:"projectId"`
}

// MergeFile overlays the keys present in the YAML file at path onto c.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	overlay(&c.Port, fc.Port)
	overlay(&c.RootMessage, fc.RootMessage)
	overlay(&c.HelloMessage, fc.HelloMessage)
	overlay(&c.LogLevel, fc.LogLevel)
	overlay(&c.ProjectID, fc.ProjectID)
	return nil
}

func overlay(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port must not be empty")
	}
	n, err := strconv.Atoi(c.Port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q: must be a number between 1 and 65535", c.Port)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
