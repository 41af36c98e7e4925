package sentiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Column names expected in the CSV header.
const (
	TextColumn  = "text"
	LabelColumn = "sentiment"
)

// ReadCSV decodes an ISO-8859-1 CSV with text and sentiment columns. Rows
// with empty text are dropped.
func ReadCSV(r io.Reader) ([]Example, error) {
	cr := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ErrBadDataset, err)
	}
	textCol, labelCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimLeft(h, "\ufeff\u00ef\u00bb\u00bf"))) {
		case TextColumn:
			textCol = i
		case LabelColumn:
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: header needs %q and %q columns, got %v", ErrBadDataset, TextColumn, LabelColumn, header)
	}

	var out []Example
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadDataset, line, err)
		}
		if textCol >= len(rec) || labelCol >= len(rec) {
			continue
		}
		text, label := strings.TrimSpace(rec[textCol]), strings.TrimSpace(rec[labelCol])
		if text == "" || label == "" {
			continue
		}
		out = append(out, Example{Text: text, Label: label})
	}
	return out, nil
}

// Split shuffles a copy of examples with seed and holds out testFraction.
func Split(examples []Example, testFraction float64, seed int64) (train, test []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible split
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	nTest := int(float64(len(shuffled))*testFraction + 0.5)
	nTest = min(max(nTest, 0), len(shuffled))
	return shuffled[nTest:], shuffled[:nTest]
}
