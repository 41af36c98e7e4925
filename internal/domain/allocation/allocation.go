// Package allocation decides which batch a candidate's certifications
// qualify for. It holds no state; capacity is enforced by the registry.
package allocation

import (
	"strings"

	model "github.com/okian/skillnav/internal/domain/model"
)

// rule maps a set of qualifying certifications to a batch.
type rule struct {
	certs []string
	batch model.Batch
}

// rules are evaluated in order; the first hit wins.
var rules = []rule{
	{certs: []string{"aws", "java"}, batch: model.BatchJava},
	{certs: []string{"azure", ".net"}, batch: model.BatchDotNet},
	{certs: []string{"python"}, batch: model.BatchDataEngineering},
}

// Target returns the batch the certifications qualify for, or an *Error
// wrapping ErrNoMatch. Matching ignores case and surrounding whitespace.
func Target(certifications []string) (model.Batch, error) {
	held := make(map[string]struct{}, len(certifications))
	for _, c := range certifications {
		held[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, r := range rules {
		for _, c := range r.certs {
			if _, ok := held[c]; ok {
				return r.batch, nil
			}
		}
	}
	return "", NoMatch()
}
