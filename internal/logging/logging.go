package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/curbz/navgraph/pkg/util"
)

type config struct {
	Logging Config `yaml:"logging"`
}

// Config is the logging section of config.yaml.
type Config struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Compress   bool   `yaml:"compress"`
	JSON       bool   `yaml:"json"`
}

// LoadConfig reads the logging section from a config file.
func LoadConfig(path string) (Config, error) {
	cfg, err := util.LoadConfig[config](path)
	if err != nil {
		return Config{}, err
	}
	return cfg.Logging, nil
}

// New builds a logger writing to the configured file with rotation, or
// to stderr when no file is set.
func New(cfg Config) (*logrus.Logger, error) {
	log := logrus.New()

	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	log.SetLevel(level)

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		w := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // MB
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		if w.MaxSize == 0 {
			w.MaxSize = 32
		}
		out = w
	}
	log.SetOutput(out)

	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: cfg.File != ""})
	}
	return log, nil
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
