package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"time"

	istorage "github.com/jwebster45206/five-acts/internal/storage"
	"github.com/jwebster45206/five-acts/pkg/flow"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/storage"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// maxPrompts bounds PLAY_TO_END so a content loop fails instead of hanging.
const maxPrompts = 1000

// Runner plays scripted suites against real content through the file save
// backend, exactly as the console would.
type Runner struct {
	DataDir           string
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	SlogLogger        *slog.Logger

	store  storage.Storage
	ctrl   *flow.Controller
	prompt *flow.Prompt
	seed   uint64
}

// NewRunner creates a new test runner
func NewRunner(dataDir string) *Runner {
	return &Runner{
		DataDir:           dataDir,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
		SlogLogger:        slog.New(slog.DiscardHandler),
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a suite from a fresh save directory.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	saveDir, err := os.MkdirTemp("", "five-acts-integration-*")
	if err != nil {
		result.Error = fmt.Errorf("failed to create save dir: %w", err)
		return result, result.Error
	}
	defer func() {
		_ = os.RemoveAll(saveDir) // Ignore error in defer
	}()

	r.store = istorage.NewFileStorage(saveDir, r.DataDir, r.SlogLogger)
	defer func() {
		_ = r.store.Close() // Ignore error in defer
	}()
	r.seed = suite.Seed

	if err := r.open(ctx); err != nil {
		result.Error = fmt.Errorf("failed to start game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Session = r.ctrl.Session().ID

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// open builds a controller over the runner's store and resumes the slot.
func (r *Runner) open(ctx context.Context) error {
	r.ctrl = flow.New(r.store, flow.Options{
		Autosave: true,
		Rand:     rand.New(rand.NewPCG(r.seed, r.seed+1)),
	}, r.SlogLogger)
	p, err := r.ctrl.ResumeFromSave(ctx)
	if err != nil {
		return err
	}
	r.prompt = p
	return nil
}

func (r *Runner) runStep(ctx context.Context, step TestStep) TestResult {
	start := time.Now()
	res := TestResult{StepName: step.Name}

	switch step.Action {
	case ActionResume:
		res.IsResume = true
		res.Error = r.open(ctx)

	case ActionPlayToEnd:
		for r.prompt != nil && res.Error == nil {
			if res.Prompts >= maxPrompts {
				res.Error = fmt.Errorf("game did not finish within %d prompts", maxPrompts)
				break
			}
			res.Error = r.answer(ctx, defaultResult(r.prompt))
			res.Prompts++
		}

	case "":
		if r.prompt == nil {
			res.Error = errors.New("no prompt is pending")
			break
		}
		answer := flow.Ack(r.prompt)
		answer.ChoiceID = step.ChoiceID
		answer.Allocation = step.Allocation
		answer.CareerTrack = step.CareerTrack
		res.Error = r.answer(ctx, answer)
		res.Prompts = 1

	default:
		res.Error = fmt.Errorf("unknown action %q", step.Action)
	}

	if res.Error == nil {
		res.Error = r.checkExpectations(step.Expectations)
	}
	res.Success = res.Error == nil
	res.Duration = time.Since(start)
	return res
}

func (r *Runner) answer(ctx context.Context, res flow.Result) error {
	p, err := r.ctrl.Resume(ctx, res)
	if err != nil {
		return fmt.Errorf("failed to answer %s prompt: %w", r.prompt.Kind, err)
	}
	r.prompt = p
	return nil
}

// defaultResult picks the first available choice, plans nothing and lets
// the roulette spin.
func defaultResult(p *flow.Prompt) flow.Result {
	res := flow.Ack(p)
	if p.Moment != nil {
		if choices := p.Moment.Choices(); len(choices) > 0 {
			res.ChoiceID = choices[0].ID
		}
	}
	return res
}

func (r *Runner) checkExpectations(exp Expectations) error {
	p := r.prompt

	if exp.Kind != nil {
		if p == nil {
			return fmt.Errorf("expected a %s prompt, got none", *exp.Kind)
		}
		if string(p.Kind) != *exp.Kind {
			return fmt.Errorf("expected prompt kind %s, got %s", *exp.Kind, p.Kind)
		}
	}
	if exp.Title != nil && (p == nil || p.Title != *exp.Title) {
		return fmt.Errorf("expected prompt title %q, got %q", *exp.Title, promptTitle(p))
	}
	if exp.Act != nil && (p == nil || p.Act != *exp.Act) {
		return fmt.Errorf("expected act %d, got prompt %+v", *exp.Act, p)
	}
	if exp.Day != nil {
		if day := r.ctrl.Session().Clock().Day; day != *exp.Day {
			return fmt.Errorf("expected day %d, got %d", *exp.Day, day)
		}
	}
	if exp.Final != nil && (p == nil || p.Final != *exp.Final) {
		return fmt.Errorf("expected final=%v", *exp.Final)
	}

	if exp.Complete != nil {
		if complete := r.ctrl.State() == flow.StateComplete; complete != *exp.Complete {
			return fmt.Errorf("expected complete=%v, controller is %s", *exp.Complete, r.ctrl.State())
		}
	}

	stats := r.ctrl.Stats()
	for name, floor := range exp.StatsAtLeast {
		if v := stats.Get(name); v < floor {
			return fmt.Errorf("expected %s >= %v, got %v", name, floor, v)
		}
	}
	for name, ceiling := range exp.StatsAtMost {
		if v := stats.Get(name); v > ceiling {
			return fmt.Errorf("expected %s <= %v, got %v", name, ceiling, v)
		}
	}
	for id, floor := range exp.ConnectionAtLeast {
		if v := r.ctrl.Relationships().Connection(id); v < floor {
			return fmt.Errorf("expected %s connection >= %v, got %v", id, floor, v)
		}
	}

	completed := r.ctrl.Engine().Progress().CompletedMoments
	for _, id := range exp.CompletedMoments {
		if !slices.Contains(completed, id) {
			return fmt.Errorf("expected moment %s to be completed, got %v", id, completed)
		}
	}

	if exp.ScrapbookMin != nil {
		if n := len(r.ctrl.Session().Scrapbook()); n < *exp.ScrapbookMin {
			return fmt.Errorf("expected at least %d scrapbook entries, got %d", *exp.ScrapbookMin, n)
		}
	}
	if exp.CareerTrack != nil {
		if track := r.ctrl.Session().CareerTrack(); track != *exp.CareerTrack {
			return fmt.Errorf("expected career track %q, got %q", *exp.CareerTrack, track)
		}
	}
	return nil
}

func promptTitle(p *flow.Prompt) string {
	if p == nil {
		return "<none>"
	}
	if p.Kind == narrative.StepMoment || p.Kind == narrative.StepClimax {
		return p.Title + " (" + p.Moment.ID + ")"
	}
	return p.Title
}
