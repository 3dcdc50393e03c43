package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "IDEA_VALIDATOR_"
	configPathEnv = "IDEA_VALIDATOR_CONFIG"

	redditUsernameEnv     = "REDDIT_USERNAME"
	redditPasswordEnv     = "REDDIT_PASSWORD"
	redditClientIDEnv     = "REDDIT_CLIENT_ID"
	redditClientSecretEnv = "REDDIT_CLIENT_SECRET"
	groqAPIKeyEnv         = "GROQ_API_KEY"
	openAIAPIKeyEnv       = "OPENAI_API_KEY"
	anthropicAPIKeyEnv    = "ANTHROPIC_API_KEY"
	telegramTokenEnv      = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv     = "TELEGRAM_CHAT_ID"
)

// Load builds a Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file named by path, or by IDEA_VALIDATOR_CONFIG when path is empty
//  3. IDEA_VALIDATOR_* env vars, "__" separating nested keys
//     (IDEA_VALIDATOR_REDDIT__USER_AGENT -> reddit.user_agent)
//  4. well-known credential variables (REDDIT_USERNAME, GROQ_API_KEY, ...)
//
// A .env file in the working directory is read first when present.
func Load(_ context.Context, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: read .env: %v", ErrLoadConfig, err)
	}

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg.applyEnvOverrides()
	cfg.applyJudgeDefaults()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(redditUsernameEnv); v != "" {
		c.Reddit.Username = v
	}
	if v := os.Getenv(redditPasswordEnv); v != "" {
		c.Reddit.Password = v
	}
	if v := os.Getenv(redditClientIDEnv); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv(redditClientSecretEnv); v != "" {
		c.Reddit.ClientSecret = v
	}

	if c.Judge.APIKey == "" {
		var keyEnv string
		switch strings.ToLower(c.Judge.Provider) {
		case JudgeProviderOpenAI:
			keyEnv = openAIAPIKeyEnv
		case JudgeProviderAnthropic:
			keyEnv = anthropicAPIKeyEnv
		default:
			keyEnv = groqAPIKeyEnv
		}
		c.Judge.APIKey = os.Getenv(keyEnv)
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}
