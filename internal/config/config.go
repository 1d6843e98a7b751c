package config

import (
	"cfbot/internal/logger"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix は環境変数のプレフィックス（例: CFBOT_AWS__REGION）
const EnvPrefix = "CFBOT"

// Config はアプリケーション全体の設定
type Config struct {
	AWS          AWSConfig          `koanf:"aws"`
	Provider     ProviderConfig     `koanf:"provider"`
	Log          LogConfig          `koanf:"log"`
	Chat         ChatConfig         `koanf:"chat"`
	Server       ServerConfig       `koanf:"server"`
	Invalidation InvalidationConfig `koanf:"invalidation"`
}

type AWSConfig struct {
	Region  string `koanf:"region"`
	Profile string `koanf:"profile"`
}

type ProviderConfig struct {
	Timeout time.Duration `koanf:"timeout"` // 1回のAPI呼び出しのタイムアウト（0で無効）
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type ChatConfig struct {
	Prefix string `koanf:"prefix"` // コマンドの先頭語（例: "cf list distributions"）
}

type ServerConfig struct {
	Address string `koanf:"address"`
}

type InvalidationConfig struct {
	WaitInterval time.Duration `koanf:"waitInterval"`
}

// Default はデフォルト設定を返す。CloudFrontはグローバルサービスなのでリージョンはus-east-1
func Default() Config {
	return Config{
		AWS:          AWSConfig{Region: "us-east-1"},
		Provider:     ProviderConfig{Timeout: 30 * time.Second},
		Log:          LogConfig{Level: "info", Pretty: true},
		Chat:         ChatConfig{Prefix: "cf"},
		Server:       ServerConfig{Address: ":8080"},
		Invalidation: InvalidationConfig{WaitInterval: 10 * time.Second},
	}
}

// Validate は設定値を検証する
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AWS.Region) == "" {
		errs = append(errs, errors.New("aws.region is required"))
	}
	if c.Provider.Timeout < 0 {
		errs = append(errs, fmt.Errorf("provider.timeout must not be negative: %s", c.Provider.Timeout))
	}
	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if strings.TrimSpace(c.Chat.Prefix) == "" {
		errs = append(errs, errors.New("chat.prefix is required"))
	}
	if c.Invalidation.WaitInterval <= 0 {
		errs = append(errs, fmt.Errorf("invalidation.waitInterval must be positive: %s", c.Invalidation.WaitInterval))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Loader は env > file > default の優先順で設定を読み込む
type Loader struct {
	envPrefix string
	files     []string
}

// NewLoader はLoaderを作成する。空のファイルパスは無視される
func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{envPrefix: envPrefix, files: files}
}

// Load は設定を読み込んで検証済みのConfigを返す
func (l *Loader) Load(ctx context.Context) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(toMap(Default()), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		canonical := map[string]string{
			"invalidation.waitinterval": "invalidation.waitInterval",
		}
		// CFBOT_AWS__REGION -> aws.region
		transform := func(s string) string {
			key := strings.TrimPrefix(s, l.envPrefix+"_")
			key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
			key = strings.ReplaceAll(key, "_", "")
			if mapped, ok := canonical[key]; ok {
				return mapped
			}
			return key
		}
		if err := k.Load(env.Provider(l.envPrefix+"_", ".", transform), nil); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func toMap(cfg Config) map[string]any {
	return map[string]any{
		"aws": map[string]any{
			"region":  cfg.AWS.Region,
			"profile": cfg.AWS.Profile,
		},
		"provider": map[string]any{
			"timeout": cfg.Provider.Timeout.String(),
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"pretty": cfg.Log.Pretty,
		},
		"chat": map[string]any{
			"prefix": cfg.Chat.Prefix,
		},
		"server": map[string]any{
			"address": cfg.Server.Address,
		},
		"invalidation": map[string]any{
			"waitInterval": cfg.Invalidation.WaitInterval.String(),
		},
	}
}
