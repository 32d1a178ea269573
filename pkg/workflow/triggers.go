package workflow

import (
	"fmt"
	"strings"

	"github.com/wfrun/wfrun/pkg/logger"
)

var triggerLog = logger.New("workflow:triggers")

// Event is a simulated repository event a workflow is matched against.
type Event struct {
	// Name is the event type, e.g. "push" or "pull_request".
	Name string

	// Ref is the full git ref, e.g. "refs/heads/main" or "refs/tags/v1.0.0".
	Ref string

	// SHA is the commit id, when known.
	SHA string

	// Changed lists the files touched by the event. Empty means unknown;
	// path filters are then skipped rather than guessed.
	Changed []string
}

// IsTagRef reports whether the event ref points at a tag.
func (e Event) IsTagRef() bool {
	return strings.HasPrefix(e.Ref, "refs/tags/")
}

// ShortRef returns the branch or tag name without the refs/ prefix.
func (e Event) ShortRef() string {
	if name, ok := strings.CutPrefix(e.Ref, "refs/heads/"); ok {
		return name
	}
	if name, ok := strings.CutPrefix(e.Ref, "refs/tags/"); ok {
		return name
	}
	return e.Ref
}

// TriggerFilters narrows when an event fires a workflow. A nil filter set
// (bare `on: push`) matches every event of that type.
type TriggerFilters struct {
	Types          []string
	Branches       []string
	BranchesIgnore []string
	Tags           []string
	TagsIgnore     []string
	Paths          []string
	PathsIgnore    []string
}

// Triggers holds the parsed `on:` section, preserving declaration order.
type Triggers struct {
	order  []string
	events map[string]*TriggerFilters
}

// Events returns the trigger event names in declaration order.
func (t Triggers) Events() []string {
	return t.order
}

// Has reports whether the workflow listens for the named event.
func (t Triggers) Has(event string) bool {
	_, ok := t.events[event]
	return ok
}

// Filters returns the filters for the named event, nil when the event is
// bare or not present.
func (t Triggers) Filters(event string) *TriggerFilters {
	return t.events[event]
}

// parseTriggers normalizes the three YAML shapes of `on:`:
// a scalar event name, a sequence of names, or a mapping with filters.
func parseTriggers(v any) (Triggers, error) {
	t := Triggers{events: make(map[string]*TriggerFilters)}

	switch on := v.(type) {
	case nil:
		return t, nil
	case string:
		t.add(on, nil)
	case []any:
		for _, item := range on {
			name, ok := item.(string)
			if !ok {
				return t, fmt.Errorf("invalid 'on' entry: %v", item)
			}
			t.add(name, nil)
		}
	case map[string]any:
		for name, cfg := range on {
			filters, err := parseTriggerFilters(name, cfg)
			if err != nil {
				return t, err
			}
			t.add(name, filters)
		}
	default:
		return t, fmt.Errorf("invalid 'on' value: %v", v)
	}

	triggerLog.Printf("Parsed triggers: events=%v", t.order)
	return t, nil
}

func (t *Triggers) add(event string, filters *TriggerFilters) {
	if _, seen := t.events[event]; !seen {
		t.order = append(t.order, event)
	}
	t.events[event] = filters
}

func parseTriggerFilters(event string, cfg any) (*TriggerFilters, error) {
	if cfg == nil {
		return nil, nil
	}
	m, ok := cfg.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid configuration for 'on.%s': %v", event, cfg)
	}

	filters := &TriggerFilters{
		Types:          stringList(m["types"]),
		Branches:       stringList(m["branches"]),
		BranchesIgnore: stringList(m["branches-ignore"]),
		Tags:           stringList(m["tags"]),
		TagsIgnore:     stringList(m["tags-ignore"]),
		Paths:          stringList(m["paths"]),
		PathsIgnore:    stringList(m["paths-ignore"]),
	}
	return filters, nil
}

// validate rejects filter combinations the platform disallows: an include
// and its ignore variant cannot be set on the same event.
func (t Triggers) validate(path string) error {
	for _, event := range t.order {
		filters := t.events[event]
		if filters == nil {
			continue
		}
		if len(filters.Branches) > 0 && len(filters.BranchesIgnore) > 0 {
			return fmt.Errorf("%s: 'on.%s' cannot use both branches and branches-ignore", path, event)
		}
		if len(filters.Tags) > 0 && len(filters.TagsIgnore) > 0 {
			return fmt.Errorf("%s: 'on.%s' cannot use both tags and tags-ignore", path, event)
		}
		if len(filters.Paths) > 0 && len(filters.PathsIgnore) > 0 {
			return fmt.Errorf("%s: 'on.%s' cannot use both paths and paths-ignore", path, event)
		}
		for _, patterns := range [][]string{
			filters.Branches, filters.BranchesIgnore,
			filters.Tags, filters.TagsIgnore,
			filters.Paths, filters.PathsIgnore,
		} {
			if _, err := compileFilterPatterns(patterns); err != nil {
				return fmt.Errorf("%s: 'on.%s': %w", path, event, err)
			}
		}
	}
	return nil
}

// Matches decides whether the event fires this trigger set. The second
// return value explains the decision for verbose output.
func (t Triggers) Matches(ev Event) (bool, string) {
	filters, ok := t.events[ev.Name]
	if !ok {
		return false, fmt.Sprintf("no %s trigger", ev.Name)
	}
	// A bare event matches any ref and any change set.
	if filters == nil {
		return true, fmt.Sprintf("bare %s trigger", ev.Name)
	}

	if ok, reason := matchRefFilters(filters, ev); !ok {
		return false, reason
	}
	if ok, reason := matchPathFilters(filters, ev); !ok {
		return false, reason
	}
	return true, fmt.Sprintf("%s trigger filters matched", ev.Name)
}

func matchRefFilters(filters *TriggerFilters, ev Event) (bool, string) {
	if ev.Ref == "" {
		return true, "no ref to filter"
	}
	name := ev.ShortRef()

	if ev.IsTagRef() {
		// A tag push does not fire a branches-only trigger and vice versa.
		if len(filters.Tags) == 0 && len(filters.TagsIgnore) == 0 && len(filters.Branches) > 0 {
			return false, "tag push against branches-only filter"
		}
		if len(filters.Tags) > 0 && !mustMatchFilter(filters.Tags, name) {
			return false, fmt.Sprintf("tag %q not in tags filter", name)
		}
		if len(filters.TagsIgnore) > 0 && mustMatchFilter(filters.TagsIgnore, name) {
			return false, fmt.Sprintf("tag %q excluded by tags-ignore", name)
		}
		return true, ""
	}

	if len(filters.Branches) == 0 && len(filters.BranchesIgnore) == 0 && len(filters.Tags) > 0 {
		return false, "branch push against tags-only filter"
	}
	if len(filters.Branches) > 0 && !mustMatchFilter(filters.Branches, name) {
		return false, fmt.Sprintf("branch %q not in branches filter", name)
	}
	if len(filters.BranchesIgnore) > 0 && mustMatchFilter(filters.BranchesIgnore, name) {
		return false, fmt.Sprintf("branch %q excluded by branches-ignore", name)
	}
	return true, ""
}

func matchPathFilters(filters *TriggerFilters, ev Event) (bool, string) {
	if len(filters.Paths) == 0 && len(filters.PathsIgnore) == 0 {
		return true, ""
	}
	// Without a change list we cannot evaluate path filters; err on the
	// side of running the workflow.
	if len(ev.Changed) == 0 {
		return true, "no changed files given, path filters skipped"
	}

	if len(filters.Paths) > 0 {
		for _, file := range ev.Changed {
			if mustMatchFilter(filters.Paths, file) {
				return true, fmt.Sprintf("changed file %q matched paths filter", file)
			}
		}
		return false, "no changed file matched paths filter"
	}

	for _, file := range ev.Changed {
		if !mustMatchFilter(filters.PathsIgnore, file) {
			return true, fmt.Sprintf("changed file %q not excluded by paths-ignore", file)
		}
	}
	return false, "all changed files excluded by paths-ignore"
}

// mustMatchFilter matches against patterns already checked by validate;
// a compile failure here would be a programming error.
func mustMatchFilter(patterns []string, value string) bool {
	ok, err := MatchFilter(patterns, value)
	if err != nil {
		triggerLog.Printf("Unexpected filter compile failure: patterns=%v, err=%v", patterns, err)
		return false
	}
	return ok
}
