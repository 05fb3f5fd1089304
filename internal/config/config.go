package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Persistence
	StateDBPath  string // sqlite database holding per-user practice state
	CacheDir     string // secondary per-user JSON document cache
	StoreTimeout time.Duration

	// Question bank CSV exports, in load order (ids are assigned across
	// files sequentially).
	QuestionCSVs []string

	// LLM judging. Empty URL disables the LLM judge and grades by exact
	// output comparison only.
	JudgeURL     string
	JudgeModel   string
	JudgeTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()
	return &Config{
		StateDBPath:  getenvDefault("PRACTICE_DB_PATH", "./practice.db"),
		CacheDir:     getenvDefault("PRACTICE_CACHE_DIR", "./user_data"),
		StoreTimeout: getDurationDefault("STORE_TIMEOUT", 5*time.Second),
		QuestionCSVs: splitList(getenvDefault("QUESTION_CSVS", "./questions.csv")),
		JudgeURL:     os.Getenv("JUDGE_URL"),
		JudgeModel:   getenvDefault("JUDGE_MODEL", "qwen3-8b"),
		JudgeTimeout: getDurationDefault("JUDGE_TIMEOUT", 30*time.Second),
	}
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
