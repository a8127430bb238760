package model_test

import (
	"encoding/json"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/fairisk/pkg/domain/model"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
)

func stats(p90 string) *model.Simulation {
	v := dec(p90)
	return model.NewSimulationStats(v.Div(dec("2")), v.Div(dec("1.5")), v.Mul(dec("2")), v)
}

func riskWith(t *testing.T, lefP90, lmP90 string) *model.Risk {
	t.Helper()
	return &model.Risk{
		ThreatEventFrequency: mustRange(t, 1, 2, 3),
		Vulnerability:        mustRange(t, 0.1, 0.2, 0.3),
		LossEventFrequency:   stats(lefP90),
		LossMagnitude:        stats(lmP90),
		AnnualLossExpectancy: stats("100"),
		Budget:               dec("10000"),
		Currency:             "SEK",
	}
}

func TestThresholds_Classify(t *testing.T) {
	tests := []struct {
		name            string
		lefP90, lmP90   string
		wantProbability int
		wantConsequence int
		wantRisk        int
		wantLevel       types.RiskLevel
	}{
		{name: "low", lefP90: "0.3", lmP90: "0.004", wantProbability: 2, wantConsequence: 2, wantRisk: 4, wantLevel: types.RiskLevelLow},
		{name: "very low", lefP90: "0.01", lmP90: "0.0001", wantProbability: 1, wantConsequence: 1, wantRisk: 1, wantLevel: types.RiskLevelVeryLow},
		{name: "middle", lefP90: "5", lmP90: "0.01", wantProbability: 3, wantConsequence: 3, wantRisk: 9, wantLevel: types.RiskLevelMiddle},
		{name: "product on a boundary stays in lower bucket", lefP90: "5", lmP90: "0.004", wantProbability: 3, wantConsequence: 2, wantRisk: 6, wantLevel: types.RiskLevelLow},
		{name: "critical", lefP90: "10", lmP90: "0.03", wantProbability: 4, wantConsequence: 4, wantRisk: 16, wantLevel: types.RiskLevelCritical},
		{name: "top of every table", lefP90: "400", lmP90: "0.2", wantProbability: 5, wantConsequence: 5, wantRisk: 25, wantLevel: types.RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := model.DefaultThresholds().Classify(riskWith(t, tt.lefP90, tt.lmP90))
			gt.NoError(t, err).Required()
			gt.Value(t, c.Probability).Equal(tt.wantProbability)
			gt.Value(t, c.Consequence).Equal(tt.wantConsequence)
			gt.Value(t, c.Risk).Equal(tt.wantRisk)
			gt.Value(t, c.Level).Equal(tt.wantLevel)
		})
	}
}

func TestThresholds_Classify_Errors(t *testing.T) {
	t.Run("unsimulated risk", func(t *testing.T) {
		_, err := model.DefaultThresholds().Classify(&model.Risk{})
		gt.Error(t, err).Is(model.ErrMissingDimension)
	})

	t.Run("malformed table", func(t *testing.T) {
		th := model.DefaultThresholds()
		th.Risk = model.ThresholdTable{}
		_, err := th.Classify(riskWith(t, "1", "0.01"))
		gt.Error(t, err).Is(model.ErrInvalidThresholdTable)
	})
}

func TestDiscreteRisk_JSON(t *testing.T) {
	risk := riskWith(t, "10", "0.03")
	th := model.DefaultThresholds()
	c, err := th.Classify(risk)
	gt.NoError(t, err).Required()

	dr := &model.DiscreteRisk{Risk: risk, Classification: c, Thresholds: th}
	data, err := json.Marshal(dr)
	gt.NoError(t, err).Required()

	var fields map[string]json.RawMessage
	gt.NoError(t, json.Unmarshal(data, &fields)).Required()
	for _, key := range []string{
		"threat_event_frequency", "vulnerability", "loss_event_frequency", "loss_magnitude",
		"annual_loss_expectancy", "budget", "currency", "discrete_risk", "thresholds",
	} {
		gt.Map(t, fields).HasKey(key)
	}

	var decoded model.DiscreteRisk
	gt.NoError(t, json.Unmarshal(data, &decoded)).Required()
	gt.B(t, decoded.Equal(dr)).True()
	gt.Value(t, decoded.Level()).Equal(types.RiskLevelCritical)
	gt.Value(t, *decoded.Classification).Equal(*c)
	gt.B(t, decoded.AnnualLossExpectancy.Equal(risk.AnnualLossExpectancy)).True()
}
