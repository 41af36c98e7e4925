package sentiment

import (
	"fmt"
	"math"
	"sort"
)

// Example is one labelled text.
type Example struct {
	Text  string
	Label string
}

// TrainOptions tune Fit.
type TrainOptions struct {
	NGramMin int
	NGramMax int
	// C is the inverse L2 regularisation strength.
	C            float64
	Iterations   int
	LearningRate float64
}

// DefaultTrainOptions mirror a TF-IDF uni+bigram logistic regression.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{NGramMin: 1, NGramMax: 2, C: 1, Iterations: 300, LearningRate: 0.5}
}

// Fit builds the vocabulary and IDF weights from examples, then trains a
// softmax regression by full-batch gradient descent.
func Fit(examples []Example, opts TrainOptions) (*Model, error) {
	if len(examples) == 0 {
		return nil, ErrNoExamples
	}
	def := DefaultTrainOptions()
	if opts.NGramMin <= 0 {
		opts.NGramMin = def.NGramMin
	}
	if opts.NGramMax < opts.NGramMin {
		opts.NGramMax = max(opts.NGramMin, def.NGramMax)
	}
	if opts.C <= 0 {
		opts.C = def.C
	}
	if opts.Iterations <= 0 {
		opts.Iterations = def.Iterations
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}

	m := &Model{NGramMin: opts.NGramMin, NGramMax: opts.NGramMax}
	m.Labels = labelsOf(examples)
	if len(m.Labels) < 2 {
		return nil, fmt.Errorf("%w: need at least two labels, got %v", ErrBadDataset, m.Labels)
	}
	labelIdx := make(map[string]int, len(m.Labels))
	for i, l := range m.Labels {
		labelIdx[l] = i
	}

	m.Vocabulary, m.IDF = buildVocabulary(examples, opts.NGramMin, opts.NGramMax)
	xs := make([]vector, len(examples))
	ys := make([]int, len(examples))
	for i, ex := range examples {
		xs[i] = m.Transform(ex.Text)
		ys[i] = labelIdx[ex.Label]
	}

	k, d, n := len(m.Labels), len(m.IDF), float64(len(examples))
	m.Weights = make([][]float64, k)
	for i := range m.Weights {
		m.Weights[i] = make([]float64, d)
	}
	m.Intercepts = make([]float64, k)

	// Objective: mean cross-entropy + ||W||^2 / (2*C*n).
	lambda := 1 / (opts.C * n)
	gradW := make([][]float64, k)
	for i := range gradW {
		gradW[i] = make([]float64, d)
	}
	gradB := make([]float64, k)
	for iter := 0; iter < opts.Iterations; iter++ {
		for c := 0; c < k; c++ {
			for j := range gradW[c] {
				gradW[c][j] = lambda * m.Weights[c][j]
			}
			gradB[c] = 0
		}
		for i, x := range xs {
			p := softmax(m.scores(x))
			for c := 0; c < k; c++ {
				diff := p[c]
				if c == ys[i] {
					diff--
				}
				diff /= n
				gradB[c] += diff
				for idx, v := range x {
					gradW[c][idx] += diff * v
				}
			}
		}
		for c := 0; c < k; c++ {
			for j := range m.Weights[c] {
				m.Weights[c][j] -= opts.LearningRate * gradW[c][j]
			}
			m.Intercepts[c] -= opts.LearningRate * gradB[c]
		}
	}
	return m, nil
}

func labelsOf(examples []Example) []string {
	seen := make(map[string]struct{})
	for _, ex := range examples {
		seen[ex.Label] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// buildVocabulary indexes terms in sorted order and computes smooth IDF:
// ln((1+n)/(1+df)) + 1.
func buildVocabulary(examples []Example, minN, maxN int) (map[string]int, []float64) {
	df := make(map[string]int)
	for _, ex := range examples {
		seen := make(map[string]struct{})
		for _, tok := range Tokens(ex.Text, minN, maxN) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(examples))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return vocab, idf
}
