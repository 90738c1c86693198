package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/xilidan/s2t-translator/services/translation/consts"
	"github.com/xilidan/s2t-translator/services/translation/entity"
)

// ConfigPathEnv names an optional YAML or .env file read before the environment.
const ConfigPathEnv = "S2T_CONFIG"

type Config struct {
	SpeechToText  SpeechToTextConfig `yaml:"speech_to_text"`
	Translator    TranslatorConfig   `yaml:"translator"`
	Whisper       WhisperConfig      `yaml:"whisper"`
	IAMURL        string             `yaml:"iam_url" env:"IAM_URL" env-default:"https://iam.cloud.ibm.com"`
	Backend       string             `yaml:"backend" env:"TRANSCRIPTION_BACKEND" env-default:"watson"`
	Timeout       time.Duration      `yaml:"timeout" env:"REQUEST_TIMEOUT" env-default:"60s"`
	ListLanguages bool               `yaml:"list_languages" env:"LIST_LANGUAGES" env-default:"true"`
	Output        string             `yaml:"output" env:"OUTPUT_FORMAT" env-default:"text"`
	Log           LogConfig          `yaml:"log"`
	Server        ServerConfig       `yaml:"server"`
}

type SpeechToTextConfig struct {
	APIKey      string `yaml:"apikey" env:"S2T_APIKEY"`
	URL         string `yaml:"url" env:"S2T_URL"`
	Model       string `yaml:"model" env:"S2T_MODEL"`
	ContentType string `yaml:"content_type" env:"S2T_CONTENT_TYPE"`
}

type TranslatorConfig struct {
	APIKey  string `yaml:"apikey" env:"LT_APIKEY"`
	URL     string `yaml:"url" env:"LT_URL"`
	Version string `yaml:"version" env:"LT_VERSION" env-default:"2018-05-01"`
	ModelID string `yaml:"model_id" env:"LT_MODEL_ID" env-default:"en-id"`
}

type WhisperConfig struct {
	APIKey  string `yaml:"apikey" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" env:"WHISPER_MODEL" env-default:"whisper-1"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	JSON  bool   `yaml:"json" env:"LOG_JSON"`
}

type ServerConfig struct {
	Port           int    `yaml:"port" env:"PORT" env-default:"8080"`
	GRPCPort       int    `yaml:"grpc_port" env:"GRPC_PORT" env-default:"9090"`
	JWTSecret      string `yaml:"jwt_secret" env:"JWT_SECRET"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"104857600"`
}

// Load reads ./.env when present, then the file named by S2T_CONFIG when set,
// then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	var err error
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	return cfg
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Backend {
	case consts.BackendWatson:
		if c.SpeechToText.APIKey == "" {
			errs = append(errs, errors.New("S2T_APIKEY is required"))
		}
		if c.SpeechToText.URL == "" {
			errs = append(errs, errors.New("S2T_URL is required"))
		}
	case consts.BackendWhisper:
		if c.Whisper.APIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for the whisper backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown TRANSCRIPTION_BACKEND %q", c.Backend))
	}

	if c.Translator.APIKey == "" {
		errs = append(errs, errors.New("LT_APIKEY is required"))
	}
	if c.Translator.URL == "" {
		errs = append(errs, errors.New("LT_URL is required"))
	}
	if _, err := c.Model(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Output) {
	case consts.FormatText, consts.FormatJSON, consts.FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("unknown OUTPUT_FORMAT %q", c.Output))
	}

	return errors.Join(errs...)
}

func (c *Config) Model() (entity.ModelID, error) {
	return entity.ParseModelID(c.Translator.ModelID)
}
