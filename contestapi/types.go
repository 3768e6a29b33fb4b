package contestapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/programme-lv/contest-portal/view"
)

// Flag decodes the backend's booleans, which arrive either as JSON booleans
// or as SQLite 0/1 integers.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null", `""`:
		*f = false
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("flag: unexpected value %s", data)
	}
	*f = n != 0
	return nil
}

type ContestStatus struct {
	Active     bool    `json:"active"`
	StartTime  string  `json:"start_time,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
	ForceEnded bool    `json:"force_ended,omitempty"`
}

// Started parses the server-reported start time.
func (s ContestStatus) Started() (time.Time, bool) {
	return view.ParseTimestamp(s.StartTime)
}

func (s ContestStatus) DurationValue() time.Duration {
	return time.Duration(s.Duration * float64(time.Second))
}

type Participant struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	College      string `json:"college"`
	SystemNumber string `json:"system_number"`
	Phone        string `json:"phone"`
	SolvedCount  int    `json:"solved_count"`
	Submitted    Flag   `json:"submitted"`
	LoginTime    string `json:"login_time,omitempty"`
	SubmitTime   string `json:"submit_time,omitempty"`
}

type LeaderboardEntry struct {
	Name         string  `json:"name"`
	College      string  `json:"college"`
	SystemNumber string  `json:"system_number"`
	SolvedCount  int     `json:"solved_count"`
	TotalTime    float64 `json:"total_time"`
	TotalWrong   int     `json:"total_wrong"`
}

type SubmissionDetail struct {
	ProblemID        int     `json:"problem_id"`
	Language         string  `json:"language"`
	IsSolved         Flag    `json:"is_solved"`
	WrongAttempts    int     `json:"wrong_attempts"`
	TimeTakenSeconds float64 `json:"time_taken_seconds"`
	LastUpdated      string  `json:"last_updated"`
	Code             string  `json:"code"`
}

type TestCase struct {
	Input       string `json:"input"`
	Expected    string `json:"expected"`
	Explanation string `json:"explanation,omitempty"`
}

type Problem struct {
	ID               int               `json:"id"`
	Title            string            `json:"title"`
	Subtitle         string            `json:"subtitle"`
	Description      string            `json:"description"`
	Constraints      string            `json:"constraints,omitempty"`
	InputFormat      string            `json:"input_format"`
	OutputFormat     string            `json:"output_format"`
	VisibleTestCases []TestCase        `json:"visible_test_cases"`
	Boilerplate      map[string]string `json:"boilerplate"`
}

type TestResult struct {
	Passed      bool   `json:"passed"`
	Input       string `json:"input,omitempty"`
	Expected    string `json:"expected"`
	Got         string `json:"got"`
	Explanation string `json:"explanation,omitempty"`
}

type RunResult struct {
	Results []TestResult `json:"results"`
	Error   string       `json:"error,omitempty"`
}

type SubmitResult struct {
	Results   []TestResult `json:"results"`
	AllPassed bool         `json:"all_passed"`
	Error     string       `json:"error,omitempty"`
}

// ActionResult is the {success, error?} answer of the command endpoints.
type ActionResult struct {
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	StartTime string `json:"start_time,omitempty"`
}

type CodeRequest struct {
	ProblemID int    `json:"problem_id"`
	Language  string `json:"language"`
	Code      string `json:"code"`
}

type SubmitRequest struct {
	ProblemID     int     `json:"problem_id"`
	Language      string  `json:"language"`
	Code          string  `json:"code"`
	ActiveSeconds float64 `json:"active_seconds"`
}

type Registration struct {
	Name         string `json:"name" validate:"required"`
	College      string `json:"college" validate:"required"`
	SystemNumber string `json:"system_number" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
}
