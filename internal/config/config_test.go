package config

import "testing"

func TestLoadIncludesGenerationDefaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "")
	t.Setenv("SEARCH_SCORE_THRESHOLD", "")
	t.Setenv("QUIZ_MAX_QUESTIONS", "")
	t.Setenv("QUIZ_MAX_DRAFT_TURNS", "")
	t.Setenv("QUIZ_SEARCH_SCORE_THRESHOLD", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("NEO4J_ENABLED", "")

	cfg := Load()
	if cfg.SearchTopK != 8 {
		t.Fatalf("expected default search top k 8, got %d", cfg.SearchTopK)
	}
	if cfg.SearchScoreThreshold != 0.5 {
		t.Fatalf("expected default search threshold 0.5, got %v", cfg.SearchScoreThreshold)
	}
	if cfg.QuizMaxQuestions != 10 {
		t.Fatalf("expected default quiz max questions 10, got %d", cfg.QuizMaxQuestions)
	}
	if cfg.QuizMaxDraftTurns != 4 {
		t.Fatalf("expected default quiz draft turns 4, got %d", cfg.QuizMaxDraftTurns)
	}
	if cfg.QuizSearchScoreThreshold != 0.6 {
		t.Fatalf("expected default quiz search threshold 0.6, got %v", cfg.QuizSearchScoreThreshold)
	}
	if cfg.APIRateLimitRPS != 10 {
		t.Fatalf("expected default rate limit rps 10, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.Neo4jEnabled {
		t.Fatalf("expected concept graph disabled by default")
	}
}

func TestLoadParsesGenerationOverrides(t *testing.T) {
	t.Setenv("SEARCH_TOP_K", "12")
	t.Setenv("SEARCH_SCORE_THRESHOLD", "0.35")
	t.Setenv("QUIZ_MAX_QUESTIONS", "5")
	t.Setenv("QUIZ_TIMEOUT_SECONDS", "240")
	t.Setenv("API_AUTH_TOKEN", "secret-token")
	t.Setenv("API_RATE_LIMIT_BURST", "40")
	t.Setenv("NEO4J_ENABLED", "true")

	cfg := Load()
	if cfg.SearchTopK != 12 {
		t.Fatalf("expected search top k 12, got %d", cfg.SearchTopK)
	}
	if cfg.SearchScoreThreshold != 0.35 {
		t.Fatalf("expected search threshold 0.35, got %v", cfg.SearchScoreThreshold)
	}
	if cfg.QuizMaxQuestions != 5 {
		t.Fatalf("expected quiz max questions 5, got %d", cfg.QuizMaxQuestions)
	}
	if cfg.QuizTimeoutSeconds != 240 {
		t.Fatalf("expected quiz timeout 240, got %d", cfg.QuizTimeoutSeconds)
	}
	if cfg.APIAuthToken != "secret-token" {
		t.Fatalf("expected auth token override, got %q", cfg.APIAuthToken)
	}
	if cfg.APIRateLimitBurst != 40 {
		t.Fatalf("expected rate limit burst 40, got %d", cfg.APIRateLimitBurst)
	}
	if !cfg.Neo4jEnabled {
		t.Fatalf("expected concept graph enabled")
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("SEARCH_SCORE_THRESHOLD", "not-a-float")
	t.Setenv("QUIZ_MAX_QUESTIONS", "ten")

	cfg := Load()
	if cfg.SearchScoreThreshold != 0.5 {
		t.Fatalf("expected fallback search threshold 0.5, got %v", cfg.SearchScoreThreshold)
	}
	if cfg.QuizMaxQuestions != 10 {
		t.Fatalf("expected fallback quiz max questions 10, got %d", cfg.QuizMaxQuestions)
	}
}
