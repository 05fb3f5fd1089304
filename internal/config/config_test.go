package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "./practice.db", cfg.StateDBPath)
	assert.Equal(t, "./user_data", cfg.CacheDir)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, []string{"./questions.csv"}, cfg.QuestionCSVs)
	assert.Empty(t, cfg.JudgeURL, "LLM judging is off unless an endpoint is configured")
	assert.Equal(t, "qwen3-8b", cfg.JudgeModel)
	assert.Equal(t, 30*time.Second, cfg.JudgeTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PRACTICE_DB_PATH", "/data/state.db")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("QUESTION_CSVS", "a.csv, b.csv ,,c.csv")
	t.Setenv("JUDGE_URL", "http://localhost:1234")

	cfg := Load()

	assert.Equal(t, "/data/state.db", cfg.StateDBPath)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}, cfg.QuestionCSVs)
	assert.Equal(t, "http://localhost:1234", cfg.JudgeURL)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , , "))
	assert.Equal(t, []string{"one"}, splitList("one"))
	assert.Equal(t, []string{"one", "two"}, splitList("one,two"))
}
