package sentiment

import "sort"

// ClassMetrics are per-label scores.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report summarises predictions against the truth.
type Report struct {
	Accuracy float64
	Classes  []ClassMetrics
	Total    int
}

// Evaluate predicts every example and scores the result.
func Evaluate(m *Model, examples []Example) (Report, error) {
	truth := make([]string, 0, len(examples))
	pred := make([]string, 0, len(examples))
	for _, ex := range examples {
		p, err := m.Predict(ex.Text)
		if err != nil {
			return Report{}, err
		}
		truth = append(truth, ex.Label)
		pred = append(pred, p)
	}
	return Score(truth, pred), nil
}

// Score compares two aligned label sequences.
func Score(truth, pred []string) Report {
	type counts struct{ tp, fp, fn, support int }
	byLabel := make(map[string]*counts)
	get := func(l string) *counts {
		c, ok := byLabel[l]
		if !ok {
			c = &counts{}
			byLabel[l] = c
		}
		return c
	}

	correct := 0
	for i := range truth {
		t, p := truth[i], pred[i]
		get(t).support++
		if t == p {
			correct++
			get(t).tp++
			continue
		}
		get(t).fn++
		get(p).fp++
	}

	labels := make([]string, 0, len(byLabel))
	for l := range byLabel {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	r := Report{Total: len(truth)}
	if len(truth) > 0 {
		r.Accuracy = float64(correct) / float64(len(truth))
	}
	for _, l := range labels {
		c := byLabel[l]
		cm := ClassMetrics{
			Label:     l,
			Precision: ratio(c.tp, c.tp+c.fp),
			Recall:    ratio(c.tp, c.tp+c.fn),
			Support:   c.support,
		}
		if cm.Precision+cm.Recall > 0 {
			cm.F1 = 2 * cm.Precision * cm.Recall / (cm.Precision + cm.Recall)
		}
		r.Classes = append(r.Classes, cm)
	}
	return r
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
