package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	// HMAC secret for locally issued bearer tokens.
	JWTSecret string

	// Blob storage for audio answers.
	BlobBasePath string

	// Seed file applied on first start (careers, questions, jobs). Empty skips.
	SeedPath string

	// Batch sizes for the two session modes.
	InterviewQuestions int
	TestQuestions      int

	// Optional OpenAI-backed assistant and feedback generation.
	OpenAIKey   string
	OpenAIModel string

	CORSOrigins []string

	AdminEmail    string
	AdminPassword string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		JWTSecret: envOr("JWT_SECRET", "supersecret-dev-key"),

		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),
		SeedPath:     envOr("SEED_PATH", "seed.yaml"),

		InterviewQuestions: envInt("INTERVIEW_QUESTIONS", 7),
		TestQuestions:      envInt("TEST_QUESTIONS", 10),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel: envOr("OPENAI_MODEL", "gpt-4o-mini"),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),

		AdminEmail:    envOr("ADMIN_EMAIL", "admin@careermate.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
