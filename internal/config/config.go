package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type TavilyConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// SearchPrompts hold the synthesis prompt strings. The user template takes
// the composed preference prompt and the candidate JSON, in that order.
type SearchPrompts struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

// QuestionPrompts hold the question-generation prompt strings. The user
// template takes the user query, question count, and answer count.
type QuestionPrompts struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Tavily    TavilyConfig    `toml:"tavily"`
	Redis     RedisConfig     `toml:"redis"`
	Server    ServerConfig    `toml:"server"`
	Search    SearchPrompts   `toml:"search_prompts"`
	Questions QuestionPrompts `toml:"question_prompts"`
}

const defaultSearchSystemPrompt = "You are a senior shopping concierge. " +
	"You are given candidate product data (JSON) sourced from a web search. " +
	"Only use these candidates; do not fabricate new sources or URLs. " +
	"For each recommendation, cite the provided product URL."

const defaultSearchUserPrompt = `%s

Candidate products (JSON):
%s

Select the best 3-6 products for the user. For each, include:
- Title
- Description (concise)
- URL (must be the exact buy link from candidates)
- Image URL (if available in candidates)
- Why It Matches
- Additional Information
Return the response as a numbered list.`

const defaultQuestionSystemPrompt = "You generate survey questions. Always return valid JSON."

const defaultQuestionUserPrompt = `Given this user request: "%[1]s"

Generate %[2]d multiple choice questions to understand their preferences.
Each question should have exactly %[3]d answer options.

Return ONLY valid JSON in this exact format:
{
  "questions": [
    {
      "id": "q1",
      "text": "Question text?",
      "answers": ["Option 1", "Option 2", "Option 3"]
    }
  ]
}

Requirements:
- Clear, specific questions
- Exactly %[3]d answers per question
- Concise answer options (2-4 words)
- Relevant to the user's request
- Use IDs: q1, q2, q3, etc.`

// Default returns a config with built-in prompt strings and sensible server
// settings. Provider credentials always come from file or environment.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Server: ServerConfig{
			Port:      "8080",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Search: SearchPrompts{
			System: defaultSearchSystemPrompt,
			User:   defaultSearchUserPrompt,
		},
		Questions: QuestionPrompts{
			System: defaultQuestionSystemPrompt,
			User:   defaultQuestionUserPrompt,
		},
	}
}

// Load reads a TOML config file over the defaults. Empty prompt fields in the
// file keep their built-in values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	defaults := Default()
	if cfg.Search.System == "" {
		cfg.Search.System = defaults.Search.System
	}
	if cfg.Search.User == "" {
		cfg.Search.User = defaults.Search.User
	}
	if cfg.Questions.System == "" {
		cfg.Questions.System = defaults.Questions.System
	}
	if cfg.Questions.User == "" {
		cfg.Questions.User = defaults.Questions.User
	}
	return cfg, nil
}
