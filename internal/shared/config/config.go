package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	ObjectStoreType    string
	LocalStoreDir      string
	AWSRegion          string
	S3Bucket           string
	S3Prefix           string
	SSEKMSKeyID        string
	LLMProvider        string
	LLMModel           string
	RenderTemplateDir  string
	DefaultTemplateID  string
	DatabaseURL        string
	Env                string
	AnalyzeTimeout     time.Duration
	ModifyTimeout      time.Duration
	RenderTimeout      time.Duration
	RetentionInterval  time.Duration
	ArtifactTTL        time.Duration
	TempUploadTTL      time.Duration
	PipelineMaxRetries int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		LLMModel:           getEnv("LLM_MODEL", ""),
		RenderTemplateDir:  getEnv("RENDER_TEMPLATE_DIR", ""),
		DefaultTemplateID:  getEnv("DEFAULT_TEMPLATE_ID", "modern"),
		DatabaseURL:        dbURL,
		Env:                env,
		AnalyzeTimeout:     getEnvDuration("ANALYZE_TIMEOUT", 30*time.Second),
		ModifyTimeout:      getEnvDuration("MODIFY_TIMEOUT", 30*time.Second),
		RenderTimeout:      getEnvDuration("RENDER_TIMEOUT", 60*time.Second),
		RetentionInterval:  getEnvDuration("RETENTION_INTERVAL", time.Hour),
		ArtifactTTL:        getEnvDuration("ARTIFACT_TTL", 30*24*time.Hour),
		TempUploadTTL:      getEnvDuration("TEMP_UPLOAD_TTL", 24*time.Hour),
		PipelineMaxRetries: getEnvInt("PIPELINE_MAX_RETRIES", 2),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
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

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
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
