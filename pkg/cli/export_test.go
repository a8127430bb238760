package cli

import (
	"context"
	"io"

	"github.com/secmon-lab/fairisk/pkg/cli/config"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
)

// ParseDocumentForTest decodes an input document and returns its risk input or assessment scenarios
func ParseDocumentForTest(data []byte) (*model.RiskInput, int, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, 0, err
	}
	if doc.risk != nil {
		return doc.risk, 0, nil
	}
	return nil, len(doc.assessment.Scenarios), nil
}

// BuildScenariosForTest resolves every scenario of an assessment document against the catalogue
func BuildScenariosForTest(data []byte, catalogue *config.Catalogue) ([]*model.Scenario, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	scenarios := make([]*model.Scenario, 0, len(doc.assessment.Scenarios))
	for _, sd := range doc.assessment.Scenarios {
		s, err := sd.build(catalogue)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ErrInvalidInput is exported for testing
var ErrInvalidInput = errInvalidInput

// WriteOutputForTest writes data the way --output does
func WriteOutputForTest(ctx context.Context, path string, stdout io.Writer, data []byte) error {
	cfg := &outputConfig{path: path}
	return cfg.write(ctx, stdout, data)
}
