package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"filebot/internal/errors"
	"filebot/pkg/types"
)

// DefaultFileName is looked up in the working directory before the XDG config home.
const DefaultFileName = "config.yaml"

// Defaults applied to keys missing from the config document.
const (
	DefaultLastWeekDays     = 7
	DefaultLastMonthDays    = 30
	DefaultConflictPolicy   = types.ConflictRename
	DefaultLogFile          = "organizer.log"
	DefaultScheduleInterval = time.Hour
	DefaultWatchDebounce    = 2 * time.Second
)

// Config represents the application configuration structure.
// A loaded Config is validated once and not modified afterwards.
type Config struct {
	TargetDirectory    string           `yaml:"target_directory"`    // Directory whose top-level files are organized
	LogFile            string           `yaml:"log_file"`            // Log file, appended to
	DryRun             bool             `yaml:"dry_run"`             // If true, simulate moves
	Rules              []types.Rule     `yaml:"rules"`               // Ordered rule set, first match wins
	DateGroups         types.DateGroups `yaml:"date_groups"`         // Age thresholds for {date_group}
	ConflictResolution string           `yaml:"conflict_resolution"` // skip, overwrite or rename
	Ignore             []string         `yaml:"ignore,omitempty"`    // Glob patterns for names never touched
	Schedule           struct {
		Interval time.Duration `yaml:"interval"` // Time between scheduled passes
	} `yaml:"schedule"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce"` // Quiet period before a watch-triggered pass
	} `yaml:"watch"`

	path   string
	policy types.ConflictPolicy
	ignore []glob.Glob
}

// DefaultPath returns the config file used when none is given: config.yaml in
// the working directory if present, else filebot/config.yaml under the XDG
// config home.
func DefaultPath() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	if p, err := xdg.SearchConfigFile(filepath.Join("filebot", DefaultFileName)); err == nil {
		return p
	}
	return filepath.Join(xdg.ConfigHome, "filebot", DefaultFileName)
}

// Load reads, validates and returns the configuration at path. An empty path
// means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError("config file not found", path, errors.ConfigNotFound, err)
		}
		return nil, errors.NewConfigError("error reading config file", path, errors.InvalidConfig, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a YAML document on top of the defaults, expands ~ in paths
// and validates the result.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewConfigError("error parsing config file", "", errors.InvalidConfig, err)
	}
	if err := checkRequiredKeys(&doc); err != nil {
		return nil, err
	}

	// Keys absent from the document keep their default values.
	cfg := defaultConfig()
	if err := doc.Decode(cfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", "", errors.InvalidConfig, err)
	}
	if cfg.ConflictResolution == "" {
		cfg.ConflictResolution = string(DefaultConflictPolicy)
	}

	cfg.TargetDirectory = ExpandHome(cfg.TargetDirectory)
	cfg.LogFile = ExpandHome(cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkRequiredKeys reports the first of target_directory, rules or a rule's
// conditions that the document leaves out. Present but empty lists are fine.
func checkRequiredKeys(doc *yaml.Node) error {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return errors.NewConfigError("missing required config key", "target_directory", errors.InvalidConfig, nil)
	}
	if mappingValue(root, "target_directory") == nil {
		return errors.NewConfigError("missing required config key", "target_directory", errors.InvalidConfig, nil)
	}
	rules := mappingValue(root, "rules")
	if rules == nil {
		return errors.NewConfigError("missing required config key", "rules", errors.InvalidConfig, nil)
	}
	if rules.Kind != yaml.SequenceNode {
		return nil
	}
	for i, rule := range rules.Content {
		name := fmt.Sprintf("rule #%d", i+1)
		if rule.Kind != yaml.MappingNode {
			continue
		}
		if n := mappingValue(rule, "name"); n != nil && n.Value != "" {
			name = n.Value
		}
		if mappingValue(rule, "conditions") == nil {
			return errors.NewRuleError("missing required rule key: conditions", name, errors.InvalidRule, nil)
		}
	}
	return nil
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// defaultConfig returns the configuration every document is merged onto.
func defaultConfig() *Config {
	cfg := &Config{
		LogFile:            DefaultLogFile,
		ConflictResolution: string(DefaultConflictPolicy),
		DateGroups: types.DateGroups{
			LastWeek:  DefaultLastWeekDays,
			LastMonth: DefaultLastMonthDays,
		},
	}
	cfg.Schedule.Interval = DefaultScheduleInterval
	cfg.Watch.Debounce = DefaultWatchDebounce
	return cfg
}

// New returns a configuration for target with the given rules and default settings.
func New(target string, rules ...types.Rule) *Config {
	cfg := defaultConfig()
	cfg.TargetDirectory = target
	cfg.Rules = rules
	return cfg
}

// Validate checks the configuration and prepares the derived conflict policy
// and ignore matchers. Errors are *errors.ConfigError or *errors.RuleError.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrInvalidConfig
	}

	if strings.TrimSpace(c.TargetDirectory) == "" {
		return errors.NewConfigError("missing required config key", "target_directory", errors.InvalidConfig, nil)
	}

	for i, rule := range c.Rules {
		name := rule.Name
		if name == "" {
			name = fmt.Sprintf("rule #%d", i+1)
		}
		for j, cond := range rule.Conditions {
			if strings.TrimSpace(cond.Destination) == "" {
				return errors.NewRuleError(fmt.Sprintf("condition #%d missing destination", j+1), name, errors.InvalidRule, nil)
			}
		}
	}

	policy, err := types.ParseConflictPolicy(c.ConflictResolution)
	if err != nil {
		return errors.NewConfigError("invalid conflict resolution", "conflict_resolution", errors.InvalidConfig, err)
	}

	if c.DateGroups.LastWeek < 0 || c.DateGroups.LastMonth < 0 {
		return errors.NewConfigError("date group thresholds must be >= 0 days", "date_groups", errors.InvalidConfig, nil)
	}

	if c.Schedule.Interval <= 0 {
		return errors.NewConfigError("schedule interval must be positive", "schedule.interval", errors.InvalidConfig, nil)
	}
	if c.Watch.Debounce < 0 {
		return errors.NewConfigError("watch debounce must be >= 0", "watch.debounce", errors.InvalidConfig, nil)
	}

	ignore := make([]glob.Glob, 0, len(c.Ignore))
	for _, pattern := range c.Ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return errors.NewConfigError("invalid ignore pattern", pattern, errors.InvalidConfig, err)
		}
		ignore = append(ignore, g)
	}

	c.policy = policy
	c.ignore = ignore
	return nil
}

// Policy returns the validated conflict policy.
func (c *Config) Policy() types.ConflictPolicy {
	if c.policy == "" {
		if p, err := types.ParseConflictPolicy(c.ConflictResolution); err == nil {
			return p
		}
		return DefaultConflictPolicy
	}
	return c.policy
}

// Ignored reports whether name matches one of the ignore patterns.
func (c *Config) Ignored(name string) bool {
	if c == nil {
		return false
	}
	for _, g := range c.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// Save writes the configuration to path as YAML.
// It creates parent directories if they don't exist.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "failed to create config directory")
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}
