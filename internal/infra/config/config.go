package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env        string
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	OpenAIBaseURL   string
	OpenAIAPIKey    string
	GenerationModel string
	EmbeddingModel  string

	RegistryPath string

	RetrievalTopK      int
	StageOneMin        int
	DominanceThreshold float64
	AnswerMaxTokens    int

	ChunkSize    int
	ChunkOverlap int

	EmbedCacheSize int
	EmbedRateLimit float64
	IngestWorkers  int

	OTLPEndpoint string
}

func Load() *Config {
	return &Config{
		Env:        getEnv("ENV", "development"),
		Port:       getEnv("PORT", "9020"),
		DBHost:     getEnv("DB_HOST", "manuals-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "manuals_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "manuals_password"),
		DBName:     getEnv("DB_NAME", "manuals_db"),

		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:    getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		GenerationModel: getEnv("GENERATION_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		RegistryPath: getEnv("REGISTRY_PATH", "manuals/registry.yaml"),

		RetrievalTopK:      getEnvInt("RETRIEVAL_TOP_K", 8),
		StageOneMin:        getEnvInt("STAGE_ONE_MIN", 16),
		DominanceThreshold: getEnvFloat("DOMINANCE_THRESHOLD", 0.6),
		AnswerMaxTokens:    getEnvInt("ANSWER_MAX_TOKENS", 3000),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		EmbedCacheSize: getEnvInt("EMBED_CACHE_SIZE", 256),
		EmbedRateLimit: getEnvFloat("EMBED_RATE_LIMIT", 4),
		IngestWorkers:  getEnvInt("INGEST_WORKERS", 2),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),
	}
}

// DSN renders the Postgres connection string.
func (c *Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret reads a value from the environment, or from the file a
// companion *_FILE variable points at, so secrets can be mounted
// instead of exported.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
