// Package sentiment classifies free-text feedback with TF-IDF features and
// a multinomial logistic regression.
package sentiment

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Model is a trained classifier. Labels are sorted; Weights has one row
// per label and one column per vocabulary term.
type Model struct {
	Labels     []string       `json:"labels"`
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	Weights    [][]float64    `json:"weights"`
	Intercepts []float64      `json:"intercepts"`
	NGramMin   int            `json:"ngram_min"`
	NGramMax   int            `json:"ngram_max"`
}

// Validate checks shapes so Predict cannot index out of range.
func (m *Model) Validate() error {
	if m == nil {
		return ErrModelNotLoaded
	}
	k, d := len(m.Labels), len(m.IDF)
	switch {
	case k == 0:
		return fmt.Errorf("%w: no labels", ErrInvalidModel)
	case len(m.Weights) != k || len(m.Intercepts) != k:
		return fmt.Errorf("%w: %d labels but %d weight rows and %d intercepts", ErrInvalidModel, k, len(m.Weights), len(m.Intercepts))
	case len(m.Vocabulary) != d:
		return fmt.Errorf("%w: vocabulary has %d terms, idf has %d", ErrInvalidModel, len(m.Vocabulary), d)
	}
	for i, row := range m.Weights {
		if len(row) != d {
			return fmt.Errorf("%w: weight row %d has %d columns, want %d", ErrInvalidModel, i, len(row), d)
		}
	}
	for term, idx := range m.Vocabulary {
		if idx < 0 || idx >= d {
			return fmt.Errorf("%w: term %q has index %d", ErrInvalidModel, term, idx)
		}
	}
	return nil
}

// vector is a sparse feature vector.
type vector map[int]float64

// Transform returns the L2-normalised TF-IDF vector of text. Terms outside
// the vocabulary are ignored.
func (m *Model) Transform(text string) vector {
	v := make(vector)
	for _, tok := range Tokens(text, m.NGramMin, m.NGramMax) {
		if idx, ok := m.Vocabulary[tok]; ok {
			v[idx]++
		}
	}
	for idx, tf := range v {
		v[idx] = tf * m.IDF[idx]
	}
	normalize(v)
	return v
}

func normalize(v vector) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for idx := range v {
		v[idx] /= norm
	}
}

// Probabilities returns the softmax probability of each label.
func (m *Model) Probabilities(text string) ([]float64, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	return softmax(m.scores(m.Transform(text))), nil
}

// Predict returns the most probable label. Ties go to the earlier label.
func (m *Model) Predict(text string) (string, error) {
	probs, err := m.Probabilities(text)
	if err != nil {
		return "", err
	}
	return m.Labels[argmax(probs)], nil
}

func (m *Model) scores(v vector) []float64 {
	out := make([]float64, len(m.Labels))
	for k := range m.Labels {
		s := m.Intercepts[k]
		for idx, x := range v {
			s += m.Weights[k][idx] * x
		}
		out[k] = s
	}
	return out
}

func softmax(z []float64) []float64 {
	hi := math.Inf(-1)
	for _, x := range z {
		hi = math.Max(hi, x)
	}
	out := make([]float64, len(z))
	var sum float64
	for i, x := range z {
		out[i] = math.Exp(x - hi)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

// Save writes the model as JSON.
func (m *Model) Save(w io.Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load decodes and validates a JSON model.
func Load(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if m.NGramMin == 0 {
		m.NGramMin = 1
	}
	if m.NGramMax == 0 {
		m.NGramMax = m.NGramMin
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
