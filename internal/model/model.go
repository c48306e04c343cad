package model

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// UserProfile carries optional personalization data. It only influences the
// synthesis prompt; it is never matched against retrieved candidates.
type UserProfile struct {
	Age       int    `json:"age"`
	Gender    Gender `json:"gender"`
	LivesInUS bool   `json:"lives_in_us"`
}

func (p *UserProfile) Validate() error {
	if p.Age < 1 || p.Age > 150 {
		return fmt.Errorf("age must be between 1 and 150, got %d", p.Age)
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("gender must be one of Male, Female, Other, got %q", p.Gender)
	}
	return nil
}

// Question is a multiple-choice question produced by the question-generation
// pipeline. Immutable once generated; the search pipeline reads it only.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []string `json:"answers"`
}

func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id must not be empty")
	}
	if utf8.RuneCountInString(strings.TrimSpace(q.Text)) < 5 {
		return fmt.Errorf("question %s: text must be at least 5 characters", q.ID)
	}
	if len(q.Answers) < 2 || len(q.Answers) > 6 {
		return fmt.Errorf("question %s: answers must have 2-6 items, got %d", q.ID, len(q.Answers))
	}
	return nil
}

// QuestionsResponse mirrors the JSON document the model is asked to emit.
type QuestionsResponse struct {
	Questions []Question `json:"questions"`
}

func (r *QuestionsResponse) Validate() error {
	if len(r.Questions) < 1 || len(r.Questions) > 10 {
		return fmt.Errorf("questions must have 1-10 items, got %d", len(r.Questions))
	}
	for i := range r.Questions {
		if err := r.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Candidate is a raw retrieval hit. It lives only within one pipeline
// invocation and is discarded after enrichment.
type Candidate struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Score       *float64 `json:"score,omitempty"`

	// RawContent is the unprocessed snippet from the search engine, kept for
	// description backfill and highlight extraction. Not part of the model
	// payload.
	RawContent string `json:"-"`
}

// SearchResult is the output contract. Every field except Title is optional
// and must be omitted, not emptied, when absent so the UI skips the widget.
type SearchResult struct {
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	URL            string   `json:"url,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	Relevance      *float64 `json:"relevance,omitempty"`
	WhyMatches     string   `json:"why_matches,omitempty"`
	AdditionalInfo string   `json:"additional_info,omitempty"`
	Highlights     []string `json:"highlights,omitempty"`
}

// LLMSearchResults is the collection shape the model is constrained to emit.
type LLMSearchResults struct {
	Results []SearchResult `json:"results"`
}

// PipelineResult is what callers get back. Success=true implies Error is
// empty; Success=false implies Results is empty.
type PipelineResult struct {
	Success bool           `json:"success"`
	Results []SearchResult `json:"results"`
	Error   string         `json:"error,omitempty"`
}

func Failure(msg string) PipelineResult {
	return PipelineResult{Success: false, Results: []SearchResult{}, Error: msg}
}
