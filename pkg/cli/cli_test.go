package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fairisk/pkg/cli"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

const testCatalogue = `
[simulation]
samples = 5000

[[questionnaire]]
id = "tef-default"
factor = "tef"

  [[questionnaire.question]]
  text = "How often is the service attacked?"

    [[questionnaire.question.alternative]]
    text = "Rarely"
    weight = { min = 0.01, probable = 0.02, max = 0.04 }

    [[questionnaire.question.alternative]]
    text = "Constantly"
    weight = { min = 0.8, probable = 356.9, max = 500 }

[[questionnaire]]
id = "vuln-default"
factor = "vuln"

  [[questionnaire.question]]
  text = "How exposed is the service?"

    [[questionnaire.question.alternative]]
    text = "Partly"
    weight = { min = 0.26, probable = 0.415, max = 0.57 }

[[questionnaire]]
id = "lm-default"
factor = "lm"
calculation = "sum"

  [[questionnaire.question]]
  text = "Direct cost share of the budget"

    [[questionnaire.question.alternative]]
    text = "Tiny"
    weight = { min = 0.0001, probable = 0.0002, max = 0.0004 }

    [[questionnaire.question.alternative]]
    text = "Noticeable"
    weight = { min = 0.0011, probable = 0.023, max = 0.065 }
`

const riskInput = `{
  "threat_event_frequency": {"min": 0.8, "probable": 356.9, "max": 500},
  "vulnerability": {"min": 0.26, "probable": 0.415, "max": 0.57},
  "loss_magnitude": {"min": 0.0011, "probable": 0.023, "max": 0.065},
  "budget": 10000,
  "currency": "SEK"
}`

const assessmentInput = `{
  "analysis_object": "Web shop",
  "version": "1",
  "scenarios": [
    {
      "name": "Credential stuffing",
      "actor": "bots",
      "asset": "customer accounts",
      "threat": "account takeover",
      "vulnerability": "password reuse",
      "budget": 10000,
      "currency": "SEK",
      "answers": {"tef": ["Constantly"], "vuln": ["0"], "lm": ["Noticeable"]}
    },
    {
      "actor": "an insider",
      "asset": "the price list",
      "threat": "leak",
      "vulnerability": "broad access",
      "budget": 10000,
      "currency": "SEK",
      "templates": {"tef": "tef-default"},
      "answers": {"tef": ["Rarely"], "vuln": ["Partly"], "lm": ["Tiny"]}
    }
  ]
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_EvaluateRiskInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.json", riskInput)
	output := filepath.Join(dir, "out.json")

	err := cli.Run(context.Background(), []string{
		"fairisk", "evaluate", "--samples", "5000", "--output", output, input,
	}, "test")
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()

	var result map[string]any
	gt.NoError(t, json.Unmarshal(data, &result)).Required()
	for _, key := range []string{
		"threat_event_frequency", "vulnerability", "loss_event_frequency",
		"loss_magnitude", "annual_loss_expectancy", "budget", "currency",
		"discrete_risk", "thresholds",
	} {
		gt.Map(t, result).HasKey(key)
	}

	discrete, ok := result["discrete_risk"].(map[string]any)
	gt.B(t, ok).True()
	gt.Value(t, discrete["level"]).Equal(string(types.RiskLevelCritical))
}

func TestRun_EvaluateRiskInput_Text(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.json", riskInput)
	output := filepath.Join(dir, "out.txt")

	err := cli.Run(context.Background(), []string{
		"fairisk", "--no-color", "evaluate", "--samples", "5000", "--format", "text", "--output", output, input,
	}, "test")
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains("Annual loss expectancy")
	gt.String(t, string(data)).Contains("critical")
}

func TestRun_EvaluateAssessment(t *testing.T) {
	dir := t.TempDir()
	catalogue := writeFile(t, dir, "catalogue.toml", testCatalogue)
	input := writeFile(t, dir, "assessment.json", assessmentInput)
	output := filepath.Join(dir, "out.json")

	err := cli.Run(context.Background(), []string{
		"fairisk", "evaluate", "--catalogue", catalogue, "--output", output, input,
	}, "test")
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()

	var result struct {
		AnalysisObject string `json:"analysis_object"`
		Scenarios      []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"scenarios"`
		Summary map[string]int `json:"summary"`
	}
	gt.NoError(t, json.Unmarshal(data, &result)).Required()
	gt.Value(t, result.AnalysisObject).Equal("Web shop")
	gt.A(t, result.Scenarios).Length(2)
	gt.Value(t, result.Summary[string(types.RiskLevelCritical)]).Equal(1)
	gt.Value(t, result.Summary[string(types.RiskLevelVeryLow)]).Equal(1)
	gt.String(t, result.Scenarios[1].Description).Contains("an insider exploits broad access")

	t.Run("output can be refreshed", func(t *testing.T) {
		refreshed := filepath.Join(dir, "refreshed.json")
		err := cli.Run(context.Background(), []string{
			"fairisk", "evaluate", "--catalogue", catalogue, "--refresh", "--concurrency", "2", "--output", refreshed, output,
		}, "test")
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(refreshed)
		gt.NoError(t, err).Required()
		var again struct {
			Summary map[string]int `json:"summary"`
		}
		gt.NoError(t, json.Unmarshal(data, &again)).Required()
		gt.Value(t, again.Summary[string(types.RiskLevelCritical)]).Equal(1)
	})
}

func TestRun_EvaluateMissingDimension(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.json", `{"threat_event_frequency": {"probable": 1}, "budget": 1}`)

	err := cli.Run(context.Background(), []string{"fairisk", "evaluate", "--samples", "5000", input}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ErrorIsLoggedBeforeOutputCloses(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "input.json", `{"threat_event_frequency": {"probable": 1}, "budget": 1}`)
	logFile := filepath.Join(dir, "fairisk.log")

	err := cli.Run(context.Background(), []string{
		"fairisk", "--log-format", "json", "--log-output", logFile,
		"evaluate", "--samples", "5000", input,
	}, "test")
	gt.Value(t, err).NotNil()

	data, err := os.ReadFile(logFile)
	gt.NoError(t, err).Required()
	gt.String(t, string(data)).Contains("failed to run app")
}

func TestRun_ValidateCommand(t *testing.T) {
	dir := t.TempDir()
	catalogue := writeFile(t, dir, "catalogue.toml", testCatalogue)

	t.Run("valid catalogue and input", func(t *testing.T) {
		input := writeFile(t, dir, "assessment.json", assessmentInput)
		err := cli.Run(context.Background(), []string{"fairisk", "validate", "--catalogue", catalogue, input}, "test")
		gt.NoError(t, err)
	})

	t.Run("unknown answer", func(t *testing.T) {
		input := writeFile(t, dir, "bad.json", `{"scenarios": [{"answers": {"tef": ["Never"]}}]}`)
		err := cli.Run(context.Background(), []string{"fairisk", "validate", "--catalogue", catalogue, input}, "test")
		gt.Value(t, err).NotNil()
	})

	t.Run("invalid catalogue", func(t *testing.T) {
		bad := writeFile(t, dir, "bad.toml", "[[threshold.risk]]\nvalue = 1\ntext = \"x\"\nthreshold = 1\n")
		err := cli.Run(context.Background(), []string{"fairisk", "validate", "--catalogue", bad}, "test")
		gt.Value(t, err).NotNil()
	})
}

func TestRun_ThresholdsCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "thresholds.json")
	err := cli.Run(context.Background(), []string{"fairisk", "thresholds", "--output", output}, "test")
	gt.NoError(t, err).Required()

	data, err := os.ReadFile(output)
	gt.NoError(t, err).Required()

	var result map[string][]map[string]any
	gt.NoError(t, json.Unmarshal(data, &result)).Required()
	gt.A(t, result["probability"]).Length(5)
	gt.A(t, result["risk"]).Length(5)
	gt.Value(t, result["risk"][4]["value"]).Equal("critical")
}

func TestBuildScenarios(t *testing.T) {
	catalogue, err := config.ParseCatalogue([]byte(testCatalogue), ".toml")
	gt.NoError(t, err).Required()

	t.Run("answers resolve against templates", func(t *testing.T) {
		scenarios, err := cli.BuildScenariosForTest([]byte(assessmentInput), catalogue)
		gt.NoError(t, err).Required()
		gt.A(t, scenarios).Length(2)

		tef := scenarios[0].Questionnaires.TEF
		gt.Value(t, tef.Questions[0].Answer().Text).Equal("Constantly")
		gt.Value(t, scenarios[0].Questionnaires.Vuln.Questions[0].Answer().Text).Equal("Partly")
		gt.Value(t, scenarios[0].Questionnaires.LM.Calculation).Equal(types.CalculationSum)
	})

	t.Run("too many answers", func(t *testing.T) {
		_, err := cli.BuildScenariosForTest([]byte(`{"scenarios": [{"answers": {"vuln": ["0", "0"]}}]}`), catalogue)
		gt.Error(t, err).Is(cli.ErrInvalidInput)
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := cli.BuildScenariosForTest([]byte(`{"scenarios": [{"templates": {"tef": "nope"}}]}`), catalogue)
		gt.Error(t, err).Is(config.ErrTemplateNotFound)
	})
}

func TestParseDocument(t *testing.T) {
	input, n, err := cli.ParseDocumentForTest([]byte(riskInput))
	gt.NoError(t, err).Required()
	gt.Value(t, n).Equal(0)
	gt.Value(t, input.Currency).Equal("SEK")
	gt.NoError(t, input.Validate())

	input, n, err = cli.ParseDocumentForTest([]byte(assessmentInput))
	gt.NoError(t, err).Required()
	gt.Value(t, input).Nil()
	gt.Value(t, n).Equal(2)

	_, _, err = cli.ParseDocumentForTest([]byte(`[1, 2]`))
	gt.Error(t, err).Is(cli.ErrInvalidInput)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteOutput(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		gt.NoError(t, cli.WriteOutputForTest(ctx, "", &buf, []byte("{}")))
		gt.Value(t, buf.String()).Equal("{}")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		gt.NoError(t, cli.WriteOutputForTest(ctx, path, nil, []byte("{}"))).Required()
		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("{}")
	})

	t.Run("failed stdout write is returned", func(t *testing.T) {
		gt.Error(t, cli.WriteOutputForTest(ctx, "", failingWriter{}, []byte("{}")))
	})

	t.Run("missing directory is returned", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.json")
		gt.Error(t, cli.WriteOutputForTest(ctx, path, nil, []byte("{}")))
	})

	t.Run("full device is returned", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("/dev/full is not available")
		}
		gt.Error(t, cli.WriteOutputForTest(ctx, "/dev/full", nil, []byte("{}")))
	})
}
