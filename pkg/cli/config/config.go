package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Catalogue is the content of a catalogue file: simulation settings,
// threshold tables and questionnaire templates
type Catalogue struct {
	Simulation     SimulationSettings `toml:"simulation" yaml:"simulation"`
	Threshold      ThresholdTables    `toml:"threshold" yaml:"threshold"`
	Questionnaires []Questionnaire    `toml:"questionnaire" yaml:"questionnaire"`
}

// SimulationSettings are the catalogue defaults for the Monte Carlo engine
type SimulationSettings struct {
	Samples      int    `toml:"samples" yaml:"samples"`
	Distribution string `toml:"distribution" yaml:"distribution"`
	Concurrency  int    `toml:"concurrency" yaml:"concurrency"`
}

// ThresholdTables holds the three classification tables. An omitted table
// falls back to the built-in one.
type ThresholdTables struct {
	Probability []ThresholdEntry `toml:"probability" yaml:"probability"`
	Consequence []ThresholdEntry `toml:"consequence" yaml:"consequence"`
	Risk        []ThresholdEntry `toml:"risk" yaml:"risk"`
}

// ThresholdEntry is one row of a threshold table. Value is an integer for the
// probability and consequence tables and a level name for the risk table.
type ThresholdEntry struct {
	Value     any     `toml:"value" yaml:"value"`
	Text      string  `toml:"text" yaml:"text"`
	Threshold float64 `toml:"threshold" yaml:"threshold"`
}

// Questionnaire is a questionnaire template
type Questionnaire struct {
	ID          string     `toml:"id" yaml:"id"`
	Factor      string     `toml:"factor" yaml:"factor"`
	Calculation string     `toml:"calculation" yaml:"calculation"`
	Questions   []Question `toml:"question" yaml:"question"`
}

type Question struct {
	Text         string        `toml:"text" yaml:"text"`
	Alternatives []Alternative `toml:"alternative" yaml:"alternative"`
}

type Alternative struct {
	Text   string `toml:"text" yaml:"text"`
	Weight Weight `toml:"weight" yaml:"weight"`
}

// Weight is a range estimate. When min and max are both omitted the range is
// spread around probable.
type Weight struct {
	Min      *float64 `toml:"min" yaml:"min"`
	Probable float64  `toml:"probable" yaml:"probable"`
	Max      *float64 `toml:"max" yaml:"max"`
}

// Range converts the weight into a model.Range
func (w Weight) Range() (model.Range, error) {
	switch {
	case w.Min == nil && w.Max == nil:
		r, err := model.RangeOf(decimal.NewFromFloat(w.Probable))
		if err != nil {
			return model.Range{}, goerr.Wrap(ErrInvalidWeight, "invalid weight", goerr.V("cause", err.Error()))
		}
		return r, nil
	case w.Min == nil || w.Max == nil:
		return model.Range{}, goerr.Wrap(ErrInvalidWeight, "weight needs both min and max, or neither")
	default:
		r, err := model.NewRangeFromFloat(*w.Min, w.Probable, *w.Max)
		if err != nil {
			return model.Range{}, goerr.Wrap(ErrInvalidWeight, "invalid weight", goerr.V("cause", err.Error()))
		}
		return r, nil
	}
}

var templateIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validate checks the template and builds it once to surface weight errors
func (q *Questionnaire) Validate() error {
	if !templateIDPattern.MatchString(q.ID) {
		return goerr.Wrap(ErrInvalidConfig, "questionnaire ID must be lowercase alphanumeric with hyphens", goerr.V(TemplateIDKey, q.ID))
	}
	if !types.Factor(q.Factor).IsValid() {
		return goerr.Wrap(ErrInvalidFactor, "unknown factor", goerr.V(TemplateIDKey, q.ID), goerr.V("factor", q.Factor))
	}
	if _, err := q.Build(); err != nil {
		return err
	}
	return nil
}

// Build creates a fresh, unanswered questionnaire from the template
func (q *Questionnaire) Build() (*model.Questionnaire, error) {
	calculation, err := types.ParseCalculation(q.Calculation)
	if err != nil {
		return nil, goerr.Wrap(model.ErrInvalidCalculation, "invalid calculation", goerr.V(TemplateIDKey, q.ID), goerr.V("cause", err.Error()))
	}

	questions := make([]*model.Question, 0, len(q.Questions))
	for i, question := range q.Questions {
		if question.Text == "" {
			return nil, goerr.Wrap(ErrMissingText, "question text is required", goerr.V(TemplateIDKey, q.ID), goerr.V(QuestionIndexKey, i))
		}
		alternatives := make([]model.Alternative, 0, len(question.Alternatives))
		for _, alt := range question.Alternatives {
			if alt.Text == "" {
				return nil, goerr.Wrap(ErrMissingText, "alternative text is required", goerr.V(TemplateIDKey, q.ID), goerr.V(QuestionIndexKey, i))
			}
			weight, err := alt.Weight.Range()
			if err != nil {
				return nil, goerr.Wrap(err, "invalid alternative", goerr.V(TemplateIDKey, q.ID), goerr.V(QuestionIndexKey, i), goerr.V("alternative", alt.Text))
			}
			alternatives = append(alternatives, model.Alternative{Text: alt.Text, Weight: weight})
		}
		questions = append(questions, model.NewQuestion(question.Text, alternatives...))
	}

	return model.NewQuestionnaire(q.Factor, calculation, questions...), nil
}

// Validate checks the catalogue
func (c *Catalogue) Validate() error {
	if c.Simulation.Samples < 0 {
		return goerr.Wrap(ErrInvalidConfig, "samples must not be negative", goerr.V("samples", c.Simulation.Samples))
	}
	if c.Simulation.Concurrency < 0 {
		return goerr.Wrap(ErrInvalidConfig, "concurrency must not be negative", goerr.V("concurrency", c.Simulation.Concurrency))
	}

	if _, err := c.Thresholds(); err != nil {
		return err
	}

	ids := make(map[string]bool)
	for _, q := range c.Questionnaires {
		if err := q.Validate(); err != nil {
			return goerr.Wrap(err, "invalid questionnaire")
		}
		if ids[q.ID] {
			return goerr.Wrap(ErrDuplicateTemplateID, "duplicate questionnaire ID", goerr.V(TemplateIDKey, q.ID))
		}
		ids[q.ID] = true
	}

	return nil
}

// Thresholds converts the tables into model thresholds and validates them
func (c *Catalogue) Thresholds() (*model.Thresholds, error) {
	thresholds := model.DefaultThresholds()

	tables := []struct {
		name    string
		entries []ThresholdEntry
		dst     *model.ThresholdTable
	}{
		{"probability", c.Threshold.Probability, &thresholds.Probability},
		{"consequence", c.Threshold.Consequence, &thresholds.Consequence},
		{"risk", c.Threshold.Risk, &thresholds.Risk},
	}

	for _, table := range tables {
		if len(table.entries) == 0 {
			continue
		}
		converted := make(model.ThresholdTable, 0, len(table.entries))
		for i, entry := range table.entries {
			value, err := thresholdValue(entry.Value)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid threshold value", goerr.V(TableKey, table.name), goerr.V(EntryIndexKey, i))
			}
			converted = append(converted, model.Threshold{
				Value:     value,
				Text:      entry.Text,
				Threshold: decimal.NewFromFloat(entry.Threshold),
			})
		}
		*table.dst = converted
	}

	if err := thresholds.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid threshold tables")
	}
	return thresholds, nil
}

func thresholdValue(v any) (model.ThresholdValue, error) {
	switch value := v.(type) {
	case int:
		return model.Ordinal(value), nil
	case int64:
		return model.Ordinal(int(value)), nil
	case float64:
		if value != float64(int(value)) {
			return model.ThresholdValue{}, goerr.Wrap(model.ErrNonOrdinalValue, "threshold value must be an integer", goerr.V("value", value))
		}
		return model.Ordinal(int(value)), nil
	case string:
		if value == "" {
			return model.ThresholdValue{}, goerr.Wrap(ErrInvalidConfig, "threshold value is empty")
		}
		return model.Label(value), nil
	default:
		return model.ThresholdValue{}, goerr.Wrap(ErrInvalidConfig, "threshold value must be an integer or a string", goerr.V("value", v))
	}
}

// Template returns a fresh questionnaire built from the template with the given ID
func (c *Catalogue) Template(id string) (*model.Questionnaire, error) {
	for _, q := range c.Questionnaires {
		if q.ID == id {
			return q.Build()
		}
	}
	return nil, goerr.Wrap(ErrTemplateNotFound, "questionnaire not found", goerr.V(TemplateIDKey, id))
}

// DefaultTemplate returns a fresh questionnaire built from the first template for factor
func (c *Catalogue) DefaultTemplate(factor types.Factor) (*model.Questionnaire, error) {
	for _, q := range c.Questionnaires {
		if types.Factor(q.Factor) == factor {
			return q.Build()
		}
	}
	return nil, goerr.Wrap(ErrTemplateNotFound, "no questionnaire for factor", goerr.V("factor", factor))
}

// LoadCatalogue reads a catalogue file. The format follows the extension:
// .yaml and .yml are YAML, everything else is TOML.
func LoadCatalogue(path string) (*Catalogue, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "catalogue file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read catalogue file", goerr.V(ConfigPathKey, path))
	}

	catalogue, err := ParseCatalogue(data, filepath.Ext(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalogue", goerr.V(ConfigPathKey, path))
	}
	return catalogue, nil
}

// ParseCatalogue decodes and validates catalogue data. ext selects the format.
func ParseCatalogue(data []byte, ext string) (*Catalogue, error) {
	var catalogue Catalogue

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &catalogue); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse YAML catalogue", goerr.V("cause", err.Error()))
		}
	case ".toml", "":
		if err := toml.Unmarshal(data, &catalogue); err != nil {
			return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML catalogue", goerr.V("cause", err.Error()))
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "unknown catalogue extension", goerr.V("ext", ext))
	}

	if err := catalogue.Validate(); err != nil {
		return nil, goerr.Wrap(err, "catalogue validation failed")
	}
	return &catalogue, nil
}

// AppConfig holds the catalogue flag and loads it on demand
type AppConfig struct {
	path string
}

func (x *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalogue",
			Aliases:     []string{"c"},
			Usage:       "Path to catalogue file (TOML or YAML) with thresholds and questionnaires",
			Destination: &x.path,
			Sources:     cli.EnvVars("FAIRISK_CATALOGUE"),
		},
	}
}

// Path returns the configured catalogue path
func (x *AppConfig) Path() string {
	return x.path
}

// Configure loads the catalogue, or returns an empty one when no path is set
func (x *AppConfig) Configure() (*Catalogue, error) {
	if x.path == "" {
		return &Catalogue{}, nil
	}
	return LoadCatalogue(x.path)
}
