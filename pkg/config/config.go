// Copyright 2025 The notekeep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/notekeep-io/notekeep/pkg/nklog"
)

// MinioConfig holds the settings for an object-storage backed cache tier.
type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"useSSL"`
}

type Config struct {
	BaseURL   string      `mapstructure:"baseURL"`
	APIToken  string      `mapstructure:"apiToken"`
	CacheDir  string      `mapstructure:"cacheDir"`
	CacheTier string      `mapstructure:"cacheTier"`
	RedisAddr string      `mapstructure:"redisAddr"`
	Minio     MinioConfig `mapstructure:"minio"`
	LogLevel  string      `mapstructure:"logLevel"`
}

var (
	once sync.Once

	mu sync.RWMutex

	config Config
)

func InitConfig() error {
	var initErr error
	once.Do(func() {
		initErr = LoadAndWatch()
	})
	return initErr
}

func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return config
}

func LoadAndWatch() error {
	pflag.String("baseURL", "", "Base URL of the notekeep backend (e.g., 'http://127.0.0.1:8080')")
	pflag.String("apiToken", "", "Bearer token for the backend API.")
	pflag.String("cacheDir", "", "Root directory of the on-disk file cache.")
	pflag.String("cacheTier", "", "Persistent cache tier: disk, redis or minio.")
	pflag.String("redisAddr", "", "Redis address for the redis cache tier.")
	pflag.String("logLevel", "", "Log level: debug, info, warn, error or fatal.")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return fmt.Errorf("failed to bind pflags: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.notekeep/")
	viper.AddConfigPath("/etc/notekeep/")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			nklog.Infof("Config file not found.")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	viper.SetDefault("baseURL", "http://127.0.0.1:8080")
	viper.SetDefault("cacheDir", "$HOME/.notekeep/cache")
	viper.SetDefault("cacheTier", "disk")
	viper.SetDefault("redisAddr", "127.0.0.1:6379")
	viper.SetDefault("logLevel", "info")

	mu.Lock()
	if err := viper.Unmarshal(&config); err != nil {
		mu.Unlock()
		return fmt.Errorf("the initial configuration cannot be decoded into the struct: %w", err)
	}
	mu.Unlock()

	viper.OnConfigChange(func(e fsnotify.Event) {
		nklog.Infof("Config file changed: %s. Reloading...", e.Name)

		mu.Lock()
		defer mu.Unlock()

		if err := viper.Unmarshal(&config); err != nil {
			nklog.Errorf("Error while reloading config: %v", err)
			return
		}

		newLogLevel, err := nklog.ParseLevel(config.LogLevel)
		if err != nil {
			nklog.Warnf("New log level in config is invalid: %v. Keeping previous level.", err)
		} else {
			nklog.SetLevel(newLogLevel)
			nklog.Infof("Log level reloaded successfully to: %s", config.LogLevel)
		}
	})
	viper.WatchConfig()

	return nil
}
