package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

const (
	formatJSON = "json"
	formatText = "text"
)

var levelColors = map[types.RiskLevel]*color.Color{
	types.RiskLevelVeryLow:  color.New(color.FgHiGreen),
	types.RiskLevelLow:      color.New(color.FgGreen),
	types.RiskLevelMiddle:   color.New(color.FgYellow),
	types.RiskLevelHigh:     color.New(color.FgRed),
	types.RiskLevelCritical: color.New(color.FgRed, color.Bold),
}

var (
	headingColor = color.New(color.Bold)
	labelColor   = color.New(color.FgCyan)
)

func levelColor(level types.RiskLevel) *color.Color {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return color.New(color.Reset)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode output")
	}
	return nil
}

func renderSimulation(w io.Writer, name string, sim *model.Simulation, unit string) {
	labelColor.Fprintf(w, "  %-24s", name)
	fmt.Fprintf(w, "min %s  probable %s  max %s  p90 %s",
		sim.Min().StringFixed(4), sim.Probable().StringFixed(4), sim.Max().StringFixed(4), sim.P90().StringFixed(4))
	if unit != "" {
		fmt.Fprintf(w, " %s", unit)
	}
	fmt.Fprintln(w)
}

func renderDiscreteRisk(w io.Writer, risk *model.DiscreteRisk) {
	labelColor.Fprintf(w, "  %-24s", "Threat event frequency")
	fmt.Fprintln(w, risk.ThreatEventFrequency.String())
	labelColor.Fprintf(w, "  %-24s", "Vulnerability")
	fmt.Fprintln(w, risk.Vulnerability.String())

	renderSimulation(w, "Loss event frequency", risk.LossEventFrequency, "")
	renderSimulation(w, "Loss magnitude", risk.LossMagnitude, "")
	renderSimulation(w, "Annual loss expectancy", risk.AnnualLossExpectancy, risk.Currency)

	c := risk.Classification
	if c == nil {
		return
	}
	labelColor.Fprintf(w, "  %-24s", "Probability")
	fmt.Fprintf(w, "%d (%s)\n", c.Probability, c.ProbabilityText)
	labelColor.Fprintf(w, "  %-24s", "Consequence")
	fmt.Fprintf(w, "%d (%s)\n", c.Consequence, c.ConsequenceText)
	labelColor.Fprintf(w, "  %-24s", "Risk")
	fmt.Fprintf(w, "%d ", c.Risk)
	levelColor(c.Level).Fprintf(w, "%s (%s)", c.Level, c.RiskText)
	fmt.Fprintln(w)
}

func renderAssessment(w io.Writer, assessment *model.Assessment) {
	if assessment.AnalysisObject != "" {
		headingColor.Fprintf(w, "%s", assessment.AnalysisObject)
		if assessment.Version != "" {
			fmt.Fprintf(w, " v%s", assessment.Version)
		}
		fmt.Fprintln(w)
	}

	for _, scenario := range assessment.Scenarios {
		fmt.Fprintln(w)
		headingColor.Fprintln(w, scenario.DisplayName())
		if scenario.Description != "" && scenario.Description != scenario.DisplayName() {
			fmt.Fprintf(w, "  %s\n", scenario.Description)
		}
		if scenario.Risk != nil {
			renderDiscreteRisk(w, scenario.Risk)
		}
	}

	fmt.Fprintln(w)
	headingColor.Fprintln(w, "Summary")
	levels := types.AllRiskLevels()
	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		levelColor(level).Fprintf(w, "  %-24s", level)
		fmt.Fprintf(w, "%d\n", assessment.Summary[level])
	}
}

func renderThresholds(w io.Writer, thresholds *model.Thresholds) {
	tables := []struct {
		name  string
		table model.ThresholdTable
	}{
		{"Probability", thresholds.Probability},
		{"Consequence", thresholds.Consequence},
		{"Risk", thresholds.Risk},
	}
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		headingColor.Fprintln(w, t.name)
		for _, entry := range t.table {
			labelColor.Fprintf(w, "  %-10s", entry.Value.String())
			fmt.Fprintf(w, "<= %-10s %s\n", entry.Threshold.String(), entry.Text)
		}
	}
}
