package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	Debug           bool
	CORSAllowOrigin []string

	MaxFileSize      int64
	AllowedFileTypes []string

	AnalysisProvider string
	AnthropicAPIKey  string
	ClaudeModel      string
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	MaxTokens        int
	Temperature      float64

	PerplexityAPIKey  string
	PerplexityModel   string
	PerplexityBaseURL string

	ValidateContracts bool

	RateLimitPerMinute    int
	MaxConcurrentAnalyses int
	UploadTimeout         time.Duration
	AnalysisTimeout       time.Duration
	RequestTimeout        time.Duration

	ArchiveEnabled  bool
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
}

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
)

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("DEBUG", false)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("MAX_FILE_SIZE", 10<<20)
	v.SetDefault("ALLOWED_FILE_TYPES", "docx")
	v.SetDefault("ANALYSIS_PROVIDER", ProviderAnthropic)
	v.SetDefault("CLAUDE_MODEL", "claude-3-5-sonnet-20241022")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("MAX_TOKENS", 4096)
	v.SetDefault("TEMPERATURE", 0.0)
	v.SetDefault("PERPLEXITY_MODEL", "sonar")
	v.SetDefault("PERPLEXITY_BASE_URL", "https://api.perplexity.ai")
	v.SetDefault("VALIDATE_CONTRACTS", false)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("MAX_CONCURRENT_ANALYSES", 5)
	v.SetDefault("UPLOAD_TIMEOUT", 30)
	v.SetDefault("ANALYSIS_TIMEOUT", 60)
	v.SetDefault("REQUEST_TIMEOUT", 90)
	v.SetDefault("ARCHIVE_ENABLED", false)
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))
	archive := v.GetBool("ARCHIVE_ENABLED")
	if env == "production" && archive && dbURL == "" {
		log.Printf("DATABASE_URL is recommended in production when ARCHIVE_ENABLED is set")
	}

	return Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		Debug:           v.GetBool("DEBUG"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),

		MaxFileSize:      v.GetInt64("MAX_FILE_SIZE"),
		AllowedFileTypes: normalizeFileTypes(splitAndTrim(v.GetString("ALLOWED_FILE_TYPES"))),

		AnalysisProvider: normalizeProvider(v.GetString("ANALYSIS_PROVIDER")),
		AnthropicAPIKey:  v.GetString("ANTHROPIC_API_KEY"),
		ClaudeModel:      v.GetString("CLAUDE_MODEL"),
		GeminiAPIKey:     v.GetString("GEMINI_API_KEY"),
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		OpenAIAPIKey:     v.GetString("OPENAI_API_KEY"),
		OpenAIModel:      v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:    v.GetString("OPENAI_BASE_URL"),
		MaxTokens:        v.GetInt("MAX_TOKENS"),
		Temperature:      v.GetFloat64("TEMPERATURE"),

		PerplexityAPIKey:  v.GetString("PERPLEXITY_API_KEY"),
		PerplexityModel:   v.GetString("PERPLEXITY_MODEL"),
		PerplexityBaseURL: v.GetString("PERPLEXITY_BASE_URL"),

		ValidateContracts: v.GetBool("VALIDATE_CONTRACTS"),

		RateLimitPerMinute:    v.GetInt("RATE_LIMIT_PER_MINUTE"),
		MaxConcurrentAnalyses: v.GetInt("MAX_CONCURRENT_ANALYSES"),
		UploadTimeout:         seconds(v.GetInt("UPLOAD_TIMEOUT")),
		AnalysisTimeout:       seconds(v.GetInt("ANALYSIS_TIMEOUT")),
		RequestTimeout:        seconds(v.GetInt("REQUEST_TIMEOUT")),

		ArchiveEnabled:  archive,
		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
		DatabaseURL:     dbURL,
	}
}

// Validate reports settings the selected providers cannot run without.
func (c Config) Validate() error {
	var missing []string
	switch c.AnalysisProvider {
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		if strings.TrimSpace(c.AnthropicAPIKey) == "" {
			missing = append(missing, "ANTHROPIC_API_KEY")
		}
	}
	if strings.TrimSpace(c.PerplexityAPIKey) == "" {
		missing = append(missing, "PERPLEXITY_API_KEY")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeFileTypes(types []string) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "."))
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{"docx"}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderGemini:
		return ProviderGemini
	case ProviderOpenAI:
		return ProviderOpenAI
	default:
		return ProviderAnthropic
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
