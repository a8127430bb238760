package model

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fairisk/pkg/domain/types"
	"github.com/shopspring/decimal"
)

// Alternative is one selectable answer of a Question
type Alternative struct {
	Text   string `json:"text"`
	Weight Range  `json:"weight"`
}

// Unanswered is the default answer of a Question: no text and a zero-width weight
var Unanswered = Alternative{}

// Equal compares text and weight
func (a Alternative) Equal(other Alternative) bool {
	return a.Text == other.Text && a.Weight.Equal(other.Weight)
}

// Question holds its alternatives and the currently selected answer
type Question struct {
	Text         string
	Alternatives []Alternative
	answer       Alternative
}

// NewQuestion creates an unanswered Question
func NewQuestion(text string, alternatives ...Alternative) *Question {
	return &Question{
		Text:         text,
		Alternatives: alternatives,
		answer:       Unanswered,
	}
}

// Answer returns the current answer
func (q *Question) Answer() Alternative {
	return q.answer
}

// Answered reports whether the answer weight has non-zero width
func (q *Question) Answered() bool {
	return !q.answer.Weight.IsZeroWidth()
}

// SetAnswer replaces the current answer. It accepts an int index into Alternatives,
// a string naming an alternative by text (or by decimal index), or an Alternative value.
func (q *Question) SetAnswer(answer any) error {
	switch v := answer.(type) {
	case int:
		return q.setIndex(v)
	case string:
		for _, alt := range q.Alternatives {
			if alt.Text == v {
				q.answer = alt
				return nil
			}
		}
		if idx, err := strconv.Atoi(v); err == nil {
			return q.setIndex(idx)
		}
		return goerr.Wrap(ErrAnswerNotFound, "no alternative with that text",
			goerr.V(AnswerKey, v), goerr.V("question", q.Text))
	case Alternative:
		q.answer = v
		return nil
	case *Alternative:
		if v == nil {
			return goerr.Wrap(ErrUnsupportedAnswer, "nil alternative", goerr.V("question", q.Text))
		}
		q.answer = *v
		return nil
	default:
		return goerr.Wrap(ErrUnsupportedAnswer, "answer must be an index, a text or an Alternative",
			goerr.V(AnswerKey, answer), goerr.V("question", q.Text))
	}
}

func (q *Question) setIndex(idx int) error {
	if idx < 0 || idx >= len(q.Alternatives) {
		return goerr.Wrap(ErrAnswerNotFound, "alternative index out of range",
			goerr.V(AnswerKey, idx),
			goerr.V("alternatives", len(q.Alternatives)),
			goerr.V("question", q.Text))
	}
	q.answer = q.Alternatives[idx]
	return nil
}

// Clone returns a deep copy
func (q *Question) Clone() *Question {
	return &Question{
		Text:         q.Text,
		Alternatives: slices.Clone(q.Alternatives),
		answer:       q.answer,
	}
}

// Equal compares text, alternatives and answer
func (q *Question) Equal(other *Question) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.Text == other.Text &&
		q.answer.Equal(other.answer) &&
		slices.EqualFunc(q.Alternatives, other.Alternatives, Alternative.Equal)
}

type questionRecord struct {
	Text         string        `json:"text"`
	Alternatives []Alternative `json:"alternatives"`
	Answer       Alternative   `json:"answer"`
}

func (q *Question) MarshalJSON() ([]byte, error) {
	alternatives := q.Alternatives
	if alternatives == nil {
		alternatives = []Alternative{}
	}
	return json.Marshal(questionRecord{
		Text:         q.Text,
		Alternatives: alternatives,
		Answer:       q.answer,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var rec questionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return goerr.Wrap(err, "failed to decode question")
	}
	*q = Question{
		Text:         rec.Text,
		Alternatives: rec.Alternatives,
		answer:       rec.Answer,
	}
	return nil
}

// Questionnaire aggregates the answers of its questions into one Range for a risk factor
type Questionnaire struct {
	Factor      string            `json:"factor"`
	Calculation types.Calculation `json:"calculation"`
	Questions   []*Question       `json:"questions"`
}

// NewQuestionnaire creates a Questionnaire. An empty calculation selects the default strategy.
func NewQuestionnaire(factor string, calculation types.Calculation, questions ...*Question) *Questionnaire {
	return &Questionnaire{
		Factor:      factor,
		Calculation: calculation.Normalize(),
		Questions:   questions,
	}
}

// calculations maps each strategy tag to its aggregation
var calculations = map[types.Calculation]func(*Questionnaire) Range{
	types.CalculationSum:      (*Questionnaire).Sum,
	types.CalculationMultiply: (*Questionnaire).Product,
	types.CalculationMean:     (*Questionnaire).Mean,
	types.CalculationMean75:   (*Questionnaire).UpperThird,
	types.CalculationRange:    (*Questionnaire).Span,
}

// Validate checks the calculation tag
func (q *Questionnaire) Validate() error {
	if _, ok := calculations[q.Calculation.Normalize()]; !ok {
		return goerr.Wrap(ErrInvalidCalculation, "unknown calculation",
			goerr.V(CalculationKey, q.Calculation), goerr.V("factor", q.Factor))
	}
	return nil
}

// Value computes the aggregate Range with the configured strategy. It is recomputed on every call.
func (q *Questionnaire) Value() (Range, error) {
	calc, ok := calculations[q.Calculation.Normalize()]
	if !ok {
		return Range{}, goerr.Wrap(ErrInvalidCalculation, "unknown calculation",
			goerr.V(CalculationKey, q.Calculation), goerr.V("factor", q.Factor))
	}
	return calc(q), nil
}

// AnsweredCount returns the number of questions whose answer is not zero-width
func (q *Questionnaire) AnsweredCount() int {
	n := 0
	for _, question := range q.Questions {
		if question.Answered() {
			n++
		}
	}
	return n
}

// Sum adds every answer weight. Unanswered questions contribute zero.
func (q *Questionnaire) Sum() Range {
	var total Range
	for _, question := range q.Questions {
		total = total.Add(question.answer.Weight)
	}
	return total
}

// Product multiplies the answered weights. Unanswered questions are skipped,
// so a questionnaire without answers yields the identity.
func (q *Questionnaire) Product() Range {
	product := Identity()
	for _, question := range q.Questions {
		if !question.Answered() {
			continue
		}
		product = product.Mul(question.answer.Weight)
	}
	return product
}

// Mean divides Sum by the number of answered questions, or by 1 when none are answered
func (q *Questionnaire) Mean() Range {
	n := q.AnsweredCount()
	if n == 0 {
		n = 1
	}
	return q.Sum().Div(int64(n))
}

// UpperThird sorts the scalars of every answered weight, splits them into three
// partitions and builds a Range from the mode and extrema of the top partition.
func (q *Questionnaire) UpperThird() Range {
	scalars := q.answeredScalars()
	if len(scalars) == 0 {
		return Range{}
	}

	slices.SortFunc(scalars, decimal.Decimal.Cmp)
	top := scalars[len(scalars)-len(scalars)/3:]
	if len(top) == 0 {
		// fewer than three scalars; the top partition is the last element
		top = scalars[len(scalars)-1:]
	}
	return Range{min: top[0], probable: modeOf(top), max: top[len(top)-1]}
}

// Span returns Range(overall minimum, mode of all scalars, overall maximum) of the answered weights
func (q *Questionnaire) Span() Range {
	scalars := q.answeredScalars()
	if len(scalars) == 0 {
		return Range{}
	}

	mode := modeOf(scalars)
	lo, hi := scalars[0], scalars[0]
	for _, s := range scalars[1:] {
		lo = decimal.Min(lo, s)
		hi = decimal.Max(hi, s)
	}
	return Range{min: lo, probable: mode, max: hi}
}

func (q *Questionnaire) answeredScalars() []decimal.Decimal {
	var scalars []decimal.Decimal
	for _, question := range q.Questions {
		if !question.Answered() {
			continue
		}
		scalars = append(scalars, question.answer.Weight.Scalars()...)
	}
	return scalars
}

// Clone returns a deep copy, so that scenarios never share answer state
func (q *Questionnaire) Clone() *Questionnaire {
	questions := make([]*Question, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = question.Clone()
	}
	return &Questionnaire{
		Factor:      q.Factor,
		Calculation: q.Calculation,
		Questions:   questions,
	}
}

// Equal compares factor, calculation and questions including answers
func (q *Questionnaire) Equal(other *Questionnaire) bool {
	if q == nil || other == nil {
		return q == other
	}
	return q.Factor == other.Factor &&
		q.Calculation.Normalize() == other.Calculation.Normalize() &&
		slices.EqualFunc(q.Questions, other.Questions, (*Question).Equal)
}

// UnmarshalJSON decodes the record and rejects unknown calculation tags
func (q *Questionnaire) UnmarshalJSON(data []byte) error {
	type plain Questionnaire
	var rec plain
	if err := json.Unmarshal(data, &rec); err != nil {
		return goerr.Wrap(err, "failed to decode questionnaire")
	}
	rec.Calculation = rec.Calculation.Normalize()
	if rec.Questions == nil {
		rec.Questions = []*Question{}
	}
	decoded := Questionnaire(rec)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*q = decoded
	return nil
}

// modeOf returns the most frequent value; ties resolve to the value seen first
func modeOf(values []decimal.Decimal) decimal.Decimal {
	var (
		best      decimal.Decimal
		bestCount int
	)
	for i, v := range values {
		count := 0
		for _, w := range values[i:] {
			if v.Equal(w) {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = v, count
		}
	}
	return best
}
