// SPDX-License-Identifier: GPL-2.0-or-later

// Package config reads the q2map settings from the environment and an
// optional .env file.
package config

import (
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvBaseDir  = "Q2MAP_BASEDIR"
	EnvGame     = "Q2MAP_GAME"
	EnvLogLevel = "Q2MAP_LOGLEVEL"
	EnvWorkers  = "Q2MAP_WORKERS"
)

type Config struct {
	BaseDir  string // directory holding baseq2
	Game     string // mod directory, empty for baseq2 only
	LogLevel string // debug, info, warn or error
	Workers  int    // parallel map loads of the check command
}

func Default() Config {
	return Config{
		BaseDir:  ".",
		LogLevel: "info",
		Workers:  runtime.NumCPU(),
	}
}

// Load seeds the environment from the given .env files, missing files are
// ignored, and returns FromEnv. Variables already set take precedence.
func Load(files ...string) (Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "could not read %s", f)
		}
	}
	return FromEnv(), nil
}

// FromEnv overrides the defaults with the Q2MAP_* variables.
func FromEnv() Config {
	c := Default()
	c.BaseDir = getEnv(EnvBaseDir, c.BaseDir)
	c.Game = getEnv(EnvGame, c.Game)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Workers = getEnvInt(EnvWorkers, c.Workers)
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}

// Level converts LogLevel, unknown values are info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
