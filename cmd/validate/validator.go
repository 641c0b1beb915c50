package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/five-acts/pkg/conditionals"
	"github.com/jwebster45206/five-acts/pkg/narrative"
	"github.com/jwebster45206/five-acts/pkg/stats"
	"gopkg.in/yaml.v3"
)

var errMissing = errors.New("file not found")

// ContentValidator checks a data directory far more strictly than the game
// loader does: unknown fields, dangling references and malformed ids are all
// errors here.
type ContentValidator struct {
	errors []string
	acts   int
	cast   map[string]bool
}

func (v *ContentValidator) ValidateDir(dataDir string) error {
	v.errors = nil
	v.acts = 0
	v.cast = make(map[string]bool)

	for n := 1; n <= narrative.FinalAct; n++ {
		dir := filepath.Join(dataDir, "acts", fmt.Sprintf("act%d", n))
		if _, err := os.Stat(dir); err != nil {
			v.addError(fmt.Sprintf("act %d: missing directory %s", n, dir))
			continue
		}
		fmt.Printf("Validating %s...\n", dir)
		v.validateAct(n, dir)
		v.acts++
	}

	v.validatePalettes(dataDir)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dataDir, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ContentValidator) validateAct(n int, dir string) {
	ctx := fmt.Sprintf("act %d", n)

	var manifest narrative.Manifest
	if err := decodeStrict(dir, "manifest", &manifest); err != nil {
		v.addError(fmt.Sprintf("%s manifest: %v", ctx, err))
		return
	}
	var moments narrative.MomentSet
	if err := decodeStrict(dir, "moments", &moments); err != nil && !errors.Is(err, errMissing) {
		v.addError(fmt.Sprintf("%s moments: %v", ctx, err))
	}
	var cfg narrative.ActConfig
	if err := decodeStrict(dir, "config", &cfg); err != nil && !errors.Is(err, errMissing) {
		v.addError(fmt.Sprintf("%s config: %v", ctx, err))
	}

	if manifest.Act != n {
		v.addError(fmt.Sprintf("%s manifest declares act %d", ctx, manifest.Act))
	}
	if cfg.Act != 0 && cfg.Act != n {
		v.addError(fmt.Sprintf("%s config declares act %d", ctx, cfg.Act))
	}

	// Cast accumulates across acts, as it does in play.
	for _, c := range cfg.Cast {
		v.validateIDFormat(ctx+" cast ID", c.ID)
		if c.Connection < 0 || c.Connection > 100 {
			v.addError(fmt.Sprintf("%s cast %s connection %v out of range", ctx, c.ID, c.Connection))
		}
		v.cast[c.ID] = true
	}

	byID := make(map[string]bool, len(moments.Moments))
	for _, m := range moments.Moments {
		v.validateIDFormat(ctx+" moment ID", m.ID)
		if byID[m.ID] {
			v.addError(fmt.Sprintf("%s duplicate moment ID '%s'", ctx, m.ID))
		}
		byID[m.ID] = true
	}
	for _, m := range moments.Moments {
		v.validateMoment(ctx, &m, byID)
	}

	for i, step := range manifest.Flow {
		v.validateStep(fmt.Sprintf("%s step %d", ctx, i), step, byID)
	}

	for _, a := range cfg.Activities {
		actx := fmt.Sprintf("%s activity %s", ctx, a.ID)
		v.validateIDFormat(ctx+" activity ID", a.ID)
		switch a.Category {
		case narrative.CategoryWork, narrative.CategoryPeople, narrative.CategoryGig,
			narrative.CategoryRest, narrative.CategoryStudy:
		default:
			v.addError(fmt.Sprintf("%s has unknown category '%s'", actx, a.Category))
		}
		for key := range a.Effects {
			if !slices.Contains(stats.Names, key) {
				v.addError(fmt.Sprintf("%s effect '%s' is not a stat", actx, key))
			}
		}
		for id := range a.Connections {
			if !v.cast[id] {
				v.addError(fmt.Sprintf("%s connects to unknown character '%s'", actx, id))
			}
		}
	}
}

func (v *ContentValidator) validateStep(ctx string, step narrative.Step, moments map[string]bool) {
	if !slices.Contains(narrative.StepTypes, step.Type) {
		v.addError(fmt.Sprintf("%s has unknown type '%s'", ctx, step.Type))
		return
	}
	switch step.Type {
	case narrative.StepMoment, narrative.StepClimax:
		if step.Moment == "" {
			v.addError(fmt.Sprintf("%s (%s) names no moment", ctx, step.Type))
		} else if !moments[step.Moment] {
			v.addError(fmt.Sprintf("%s references unknown moment '%s'", ctx, step.Moment))
		}
	case narrative.StepCareerRoulette:
		if len(step.Options) == 0 {
			v.addError(fmt.Sprintf("%s career_roulette has no options", ctx))
		}
		for _, o := range step.Options {
			v.validateIDFormat(ctx+" career option", o)
		}
	}
}

func (v *ContentValidator) validateMoment(actCtx string, m *narrative.Moment, moments map[string]bool) {
	ctx := fmt.Sprintf("%s moment %s", actCtx, m.ID)
	if len(m.Narrative) == 0 {
		v.addError(ctx + " has no narrative")
	}
	choiceIDs := make(map[string]bool)
	for i, e := range m.Narrative {
		ectx := fmt.Sprintf("%s entry %d", ctx, i)
		switch e.Type {
		case narrative.EntryDescription, narrative.EntryMonologue:
		case narrative.EntryDialogue:
			if e.Speaker == "" {
				v.addError(ectx + " dialogue has no speaker")
			}
		case narrative.EntryChoices:
			if len(e.Choices) == 0 {
				v.addError(ectx + " has no choices")
			}
		default:
			v.addError(fmt.Sprintf("%s has unknown type '%s'", ectx, e.Type))
		}
		if e.Condition != nil {
			v.validateCondition(ectx, e.Condition)
		}
		for _, c := range e.Choices {
			cctx := fmt.Sprintf("%s choice %s", ctx, c.ID)
			v.validateIDFormat(ctx+" choice ID", c.ID)
			if choiceIDs[c.ID] {
				v.addError(fmt.Sprintf("%s duplicate choice ID '%s'", ctx, c.ID))
			}
			choiceIDs[c.ID] = true
			if c.Next != "" && !moments[c.Next] {
				v.addError(fmt.Sprintf("%s jumps to unknown moment '%s'", cctx, c.Next))
			}
			for key := range c.Effects {
				v.validateEffectKey(cctx, key)
			}
			if c.Condition != nil {
				v.validateCondition(cctx, c.Condition)
			}
		}
	}
}

func (v *ContentValidator) validateEffectKey(ctx, key string) {
	if slices.Contains(stats.Names, key) {
		return
	}
	if id, ok := strings.CutSuffix(key, "_connection"); ok {
		if !v.cast[id] {
			v.addError(fmt.Sprintf("%s effect '%s' names unknown character '%s'", ctx, key, id))
		}
		return
	}
	v.addError(fmt.Sprintf("%s has unknown effect '%s'", ctx, key))
}

func (v *ContentValidator) validateCondition(ctx string, c *conditionals.Condition) {
	if !c.Operator.Known() {
		v.addError(fmt.Sprintf("%s condition has unknown operator '%s'", ctx, c.Operator))
	}
	switch c.Shape() {
	case "stat":
		if !slices.Contains(stats.Names, c.Stat) {
			v.addError(fmt.Sprintf("%s condition names unknown stat '%s'", ctx, c.Stat))
		}
	case "relationship":
		if !v.cast[c.Relationship] {
			v.addError(fmt.Sprintf("%s condition names unknown character '%s'", ctx, c.Relationship))
		}
	case "choice":
		if c.Value.IsNum {
			v.addError(fmt.Sprintf("%s choice condition compares against a number", ctx))
		}
		v.validateIDFormat(ctx+" condition choice", c.Choice)
		return
	default:
		v.addError(ctx + " condition has no stat, relationship or choice")
		return
	}
	if c.Operator == conditionals.OpNE {
		v.addError(fmt.Sprintf("%s condition uses 'ne' on a number; it always passes", ctx))
	}
	if !c.Value.IsNum {
		v.addError(fmt.Sprintf("%s condition compares a number against '%s'", ctx, c.Value.Str))
	}
}

func (v *ContentValidator) validatePalettes(dataDir string) {
	palettes := make(map[int]narrative.Palette)
	if err := decodeStrict(dataDir, "palettes", &palettes); err != nil {
		if !errors.Is(err, errMissing) {
			v.addError(fmt.Sprintf("palettes: %v", err))
		}
		return
	}
	for act, p := range palettes {
		if act < 1 || act > narrative.FinalAct {
			v.addError(fmt.Sprintf("palette for act %d is out of range", act))
		}
		if len(p.Colors) == 0 {
			v.addError(fmt.Sprintf("palette for act %d has no colors", act))
		}
		for _, c := range p.Colors {
			if !hexColorRegex.MatchString(c) {
				v.addError(fmt.Sprintf("palette for act %d has invalid color '%s'", act, c))
			}
		}
	}
}

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		v.addError(fieldName + " is empty")
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

// decodeStrict decodes dir/base.{json,yaml,yml}, rejecting unknown fields.
func decodeStrict(dir, base string, target any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		if ext == ".json" {
			if !json.Valid(data) {
				return fmt.Errorf("file %s contains invalid JSON", path)
			}
			decoder := json.NewDecoder(bytes.NewReader(data))
			decoder.DisallowUnknownFields()
			if err := decoder.Decode(target); err != nil {
				return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", path, err)
			}
			return nil
		}

		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(target); err != nil {
			return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("%s: %w", base, errMissing)
}

var (
	validIDRegex  = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}
