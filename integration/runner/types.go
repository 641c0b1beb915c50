package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/five-acts/pkg/session"
)

// Special step actions that do not answer a prompt
const (
	// ActionResume drops the controller and rebuilds it from the save slot.
	ActionResume = "RESUME"
	// ActionPlayToEnd answers every remaining prompt with the default policy.
	ActionPlayToEnd = "PLAY_TO_END"
)

// TestSuite defines a complete scripted playthrough
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Seed  uint64     `json:"seed,omitempty"`  // career roulette seed
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep answers the pending prompt and checks the outcome.
// Exactly one of Action, ChoiceID, Allocation or CareerTrack is normally set;
// a step with none of them acknowledges the prompt.
type TestStep struct {
	Name         string             `json:"name,omitempty"`
	Action       string             `json:"action,omitempty"`
	ChoiceID     string             `json:"choice,omitempty"`
	Allocation   session.Allocation `json:"allocate,omitempty"`
	CareerTrack  string             `json:"track,omitempty"`
	Expectations Expectations       `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// The next prompt
	Kind  *string `json:"kind,omitempty"`
	Title *string `json:"title,omitempty"`
	Act   *int    `json:"act,omitempty"`
	Day   *int    `json:"day,omitempty"`
	Final *bool   `json:"final,omitempty"`

	// Game state
	Complete          *bool              `json:"complete,omitempty"`
	StatsAtLeast      map[string]float64 `json:"stats_at_least,omitempty"`
	StatsAtMost       map[string]float64 `json:"stats_at_most,omitempty"`
	ConnectionAtLeast map[string]float64 `json:"connection_at_least,omitempty"`
	CompletedMoments  []string           `json:"completed_moments,omitempty"`
	ScrapbookMin      *int               `json:"scrapbook_min,omitempty"`
	CareerTrack       *string            `json:"career_track,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName string
	StepName string
	Success  bool
	Error    error
	Duration time.Duration
	Prompts  int  // prompts answered by this step
	IsResume bool // True if this was a RESUME step
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Session  uuid.UUID // session played by this run
}
