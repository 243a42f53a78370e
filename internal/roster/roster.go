package roster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Document is a roster file: the skills, staff, tasks, shifts and manual order to load.
type Document struct {
	Skills  []string      `toml:"skills" yaml:"skills"`
	Members []MemberEntry `toml:"members" yaml:"members"`
	Tasks   []TaskEntry   `toml:"tasks" yaml:"tasks"`
	Shifts  []ShiftEntry  `toml:"shifts" yaml:"shifts"`
	Order   []string      `toml:"order" yaml:"order"` // task codes, first is position 1
	Rules   []RuleEntry   `toml:"rules" yaml:"rules"`
}

type MemberEntry struct {
	Name         string   `toml:"name" yaml:"name"`
	Roles        []string `toml:"roles" yaml:"roles"`
	FixedMinutes int      `toml:"fixed_minutes" yaml:"fixed_minutes"`
	Skills       []string `toml:"skills" yaml:"skills"`
}

type TaskEntry struct {
	Code            string   `toml:"code" yaml:"code"`
	Name            string   `toml:"name" yaml:"name"`
	DurationMinutes int      `toml:"duration_minutes" yaml:"duration_minutes"`
	Skills          []string `toml:"skills" yaml:"skills"`
	MinCoverage     int      `toml:"min_coverage" yaml:"min_coverage"`
	MustRun         bool     `toml:"must_run" yaml:"must_run"`
	Due             string   `toml:"due" yaml:"due"`
	EarliestStart   string   `toml:"earliest_start" yaml:"earliest_start"`
	Type            string   `toml:"type" yaml:"type"`
	Recurrence      string   `toml:"recurrence" yaml:"recurrence"`
	PriorityWeight  int      `toml:"priority_weight" yaml:"priority_weight"`
	AllowMultiple   bool     `toml:"allow_multiple" yaml:"allow_multiple"`
}

type ShiftEntry struct {
	Member string `toml:"member" yaml:"member"`
	Date   string `toml:"date" yaml:"date"`
	Start  string `toml:"start" yaml:"start"`
	End    string `toml:"end" yaml:"end"`
	Class  string `toml:"class" yaml:"class"`
}

type RuleEntry struct {
	Task   string `toml:"task" yaml:"task"`
	Member string `toml:"member" yaml:"member"`
	Kind   string `toml:"kind" yaml:"kind"`
}

// Load reads a roster file. The format follows the extension: .toml, .yaml or .yml.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode parses roster data in the given format ("toml", "yaml", "yml", with or without a dot).
func Decode(data []byte, format string) (*Document, error) {
	doc := &Document{}
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		if _, err := toml.Decode(string(data), doc); err != nil {
			return nil, fmt.Errorf("failed to parse toml roster: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml roster: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported roster format %q (use .toml, .yaml or .yml)", format)
	}
	return doc, nil
}
