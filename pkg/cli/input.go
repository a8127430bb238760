package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/secmon-lab/fairisk/pkg/utils/safe"
)

var (
	errInvalidInput = goerr.New("invalid input document")
)

// scenarioDocument is a scenario as written by hand: either with full
// questionnaires, or with answers to catalogue templates
type scenarioDocument struct {
	model.Scenario

	// Templates selects a catalogue questionnaire per factor; the first template of the factor otherwise
	Templates map[types.Factor]string `json:"templates,omitempty"`
	// Answers lists one answer per question, by alternative text or index. Empty leaves a question unanswered.
	Answers map[types.Factor][]string `json:"answers,omitempty"`
}

type assessmentDocument struct {
	AnalysisObject string              `json:"analysis_object"`
	Version        string              `json:"version"`
	Date           string              `json:"date"`
	Scope          string              `json:"scope"`
	Owner          string              `json:"owner"`
	Scenarios      []*scenarioDocument `json:"scenarios"`
}

func (d *assessmentDocument) header() model.Assessment {
	return model.Assessment{
		AnalysisObject: d.AnalysisObject,
		Version:        d.Version,
		Date:           d.Date,
		Scope:          d.Scope,
		Owner:          d.Owner,
	}
}

// document is either a single risk input or an assessment
type document struct {
	risk       *model.RiskInput
	assessment *assessmentDocument
}

func readInput(ctx context.Context, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read stdin")
		}
		return data, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open input", goerr.V("path", path))
	}
	defer safe.Close(ctx, f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read input", goerr.V("path", path))
	}
	return data, nil
}

// parseDocument decides the document kind by the presence of a scenarios key
func parseDocument(data []byte) (*document, error) {
	var probe struct {
		Scenarios json.RawMessage `json:"scenarios"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, goerr.Wrap(errInvalidInput, "input is not a JSON object", goerr.V("cause", err.Error()))
	}

	if probe.Scenarios != nil {
		var assessment assessmentDocument
		if err := json.Unmarshal(data, &assessment); err != nil {
			return nil, goerr.Wrap(errInvalidInput, "failed to decode assessment", goerr.V("cause", err.Error()))
		}
		return &document{assessment: &assessment}, nil
	}

	var input model.RiskInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, goerr.Wrap(errInvalidInput, "failed to decode risk input", goerr.V("cause", err.Error()))
	}
	return &document{risk: &input}, nil
}

// build resolves templates and answers into the scenario's questionnaires
func (d *scenarioDocument) build(catalogue *config.Catalogue) (*model.Scenario, error) {
	scenario := d.Scenario.Clone()
	if scenario.Questionnaires != nil {
		if len(d.Answers) > 0 || len(d.Templates) > 0 {
			return nil, goerr.Wrap(errInvalidInput, "questionnaires and answers are mutually exclusive", goerr.V("scenario", scenario.DisplayName()))
		}
		return scenario, nil
	}
	if scenario.Risk != nil {
		return scenario, nil
	}

	set := &model.QuestionnaireSet{}
	targets := []struct {
		factor types.Factor
		dst    **model.Questionnaire
	}{
		{types.FactorThreatEventFrequency, &set.TEF},
		{types.FactorVulnerability, &set.Vuln},
		{types.FactorLossMagnitude, &set.LM},
	}

	for _, target := range targets {
		q, err := d.template(catalogue, target.factor)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve questionnaire", goerr.V("scenario", scenario.DisplayName()))
		}

		answers := d.Answers[target.factor]
		if len(answers) > len(q.Questions) {
			return nil, goerr.Wrap(errInvalidInput, "more answers than questions",
				goerr.V("factor", target.factor), goerr.V("answers", len(answers)), goerr.V("questions", len(q.Questions)))
		}
		for i, answer := range answers {
			if answer == "" {
				continue
			}
			if err := q.Questions[i].SetAnswer(answer); err != nil {
				return nil, goerr.Wrap(err, "failed to answer question",
					goerr.V("factor", target.factor), goerr.V("question", q.Questions[i].Text))
			}
		}
		*target.dst = q
	}

	scenario.Questionnaires = set
	return scenario, nil
}

func (d *scenarioDocument) template(catalogue *config.Catalogue, factor types.Factor) (*model.Questionnaire, error) {
	if id, ok := d.Templates[factor]; ok {
		return catalogue.Template(id)
	}
	return catalogue.DefaultTemplate(factor)
}
