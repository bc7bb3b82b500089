// Package config reads the process configuration from TRAVELOG_*
// environment variables with sensible local-dev defaults.
package config

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	StaticDir  string `mapstructure:"static_dir"`
	RootURL    string `mapstructure:"root_url"`
	LogLevel   string `mapstructure:"log_level"`

	CMS     CMS     `mapstructure:"cms"`
	Session Session `mapstructure:"session"`
	Pages   Pages   `mapstructure:"pages"`
	Locale  Locale  `mapstructure:"locale"`
}

type CMS struct {
	BaseURL string `mapstructure:"base_url"`
}

type Session struct {
	// Secret signs the session cookie. When empty a random secret is
	// generated, which invalidates existing sessions on restart.
	Secret string `mapstructure:"secret"`
}

type Pages struct {
	Preview         int `mapstructure:"preview"`
	Latest          int `mapstructure:"latest"`
	Comments        int `mapstructure:"comments"`
	ArticleComments int `mapstructure:"article_comments"`
}

type Locale struct {
	Default string `mapstructure:"default"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRAVELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so
	// every key needs a default.
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("static_dir", "internal/web/static")
	v.SetDefault("root_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("cms.base_url", "http://localhost:1337")
	v.SetDefault("session.secret", "")
	v.SetDefault("pages.preview", 3)
	v.SetDefault("pages.latest", 6)
	v.SetDefault("pages.comments", 4)
	v.SetDefault("pages.article_comments", 25)
	v.SetDefault("locale.default", "id")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, err
		}
		cfg.Session.Secret = secret
	}

	return cfg, nil
}

func (c Config) SessionSecret() []byte {
	return []byte(c.Session.Secret)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return fmt.Sprintf("%x", buf), nil
}
