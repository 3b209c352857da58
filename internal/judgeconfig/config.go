// Package judgeconfig loads and validates a problem's judge.yaml and
// threads the resulting Context (paths, config, recipe) through every
// stage constructor instead of relying on process-wide state.
package judgeconfig

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/judgeforge/judgeforge/internal/judgeerr"
	"github.com/judgeforge/judgeforge/internal/recipe"
)

// ProblemType distinguishes a batch problem from an interactive one.
type ProblemType string

const (
	Batch       ProblemType = "batch"
	Interactive ProblemType = "interactive"
)

// Convention selects how validator/checker exit codes are interpreted.
type Convention string

const (
	ICPC    Convention = "icpc"
	CMS     Convention = "cms"
	OldTIOJ Convention = "old-tioj"
	NewTIOJ Convention = "new-tioj"
)

// AnswerSource chooses whether output is produced by the model solution
// or supplied directly by the generator (forced output).
type AnswerSource string

const (
	FromSolution  AnswerSource = "solution"
	FromGenerator AnswerSource = "generator"
)

// Limits is one (time, memory, output) triple; Config carries two: the
// limits applied to contestant solutions and the looser ones applied to
// trusted steps (generators, validators, checkers).
type Limits struct {
	TimeSeconds  float64 `yaml:"time_sec"`
	MemoryMiB    int64   `yaml:"memory_mib"`
	OutputMiB    int64   `yaml:"output_mib"`
}

// Config is the parsed judge.yaml document.
type Config struct {
	ProblemName string `yaml:"problem_name"`

	InputExt  string `yaml:"input_ext"`
	OutputExt string `yaml:"output_ext"`

	Type       ProblemType  `yaml:"problem_type"`
	Convention Convention   `yaml:"judge_convention"`
	Answer     AnswerSource `yaml:"answer_generation"`

	Limits        Limits `yaml:"limits"`
	TrustedLimits Limits `yaml:"trusted_limits"`

	StackMiB int `yaml:"stack_mib"`

	CheckerRunsOnForced    bool `yaml:"checker_runs_on_forced"`
	CheckerRunsOnGenerated bool `yaml:"checker_runs_on_generated"`
}

// Load reads, schema-validates, and unmarshals path into a Config.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigMissing, "read config", err).At(path)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigInvalid, "parse config yaml", err).At(path)
	}

	if err := validateAgainstSchema(doc); err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigInvalid, "validate config schema", err).At(path)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigInvalid, "decode config", err).At(path)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.InputExt == "" {
		cfg.InputExt = ".in"
	}
	if cfg.OutputExt == "" {
		cfg.OutputExt = ".out"
	}
	if cfg.StackMiB == 0 {
		cfg.StackMiB = 64
	}
	if cfg.TrustedLimits.TimeSeconds == 0 {
		cfg.TrustedLimits.TimeSeconds = 10
	}
	if cfg.TrustedLimits.MemoryMiB == 0 {
		cfg.TrustedLimits.MemoryMiB = 1024
	}
	if cfg.TrustedLimits.OutputMiB == 0 {
		cfg.TrustedLimits.OutputMiB = 256
	}
}

// Context bundles the resolved problem layout, its loaded config, and
// its parsed recipe, and is passed by value (or pointer) into every
// stage constructor rather than read from globals.
type Context struct {
	ProblemDir string
	Config     *Config
	Recipe     *recipe.Recipe
}

func (c *Context) path(elems ...string) string {
	return filepath.Join(append([]string{c.ProblemDir}, elems...)...)
}

func (c *Context) GeneratorsDir() string     { return c.path("generators") }
func (c *Context) ValidatorsDir() string     { return c.path("validators") }
func (c *Context) SolutionsDir() string      { return c.path("solutions") }
func (c *Context) CheckerDir() string        { return c.path("checker") }
func (c *Context) InteractorDir() string     { return c.path("interactor") }
func (c *Context) ManualDir() string         { return c.path("manual") }
func (c *Context) TestcasesDir() string      { return c.path("testcases") }
func (c *Context) LogsGenerationDir() string { return c.path("logs", "generation") }
func (c *Context) LogsInvocationDir() string { return c.path("logs", "invocation") }
func (c *Context) SandboxDir() string        { return c.path(".sandbox") }

// NewContext loads the config and recipe for problemDir and returns a
// ready-to-use Context.
func NewContext(problemDir string) (*Context, error) {
	cfg, err := Load(filepath.Join(problemDir, "judge.yaml"))
	if err != nil {
		return nil, err
	}

	recipePath := filepath.Join(problemDir, "recipe.txt")
	raw, err := os.ReadFile(recipePath)
	if err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigMissing, "read recipe", err).At(recipePath)
	}

	lines := strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
	rec, err := recipe.Parse(lines)
	if err != nil {
		return nil, judgeerr.Wrap(judgeerr.ConfigInvalid, "parse recipe", err).At(recipePath)
	}

	return &Context{ProblemDir: problemDir, Config: cfg, Recipe: rec}, nil
}
