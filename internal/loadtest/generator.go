package loadtest

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/skillnav/pkg/logger"
)

// certificationPool mixes qualifying and non-qualifying certifications so
// a run exercises every allocation outcome.
var certificationPool = []string{"AWS", "java", "Azure", ".NET", "Python", "PMP", "Scrum", "CCNA"}

const maxCertifications = 3

func randomInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// generateSubmissions creates n registrations with unique emails.
func generateSubmissions(ctx context.Context, n int, stats *Stats) []Submission {
	logger.Get().Info(ctx, "generating candidates with unique emails", logger.Int("candidates", n))

	subs := make([]Submission, n)
	for i := range subs {
		id := uuid.NewString()
		subs[i] = Submission{
			Name:           "Candidate " + id[:8],
			Email:          id + "@loadtest.example.com",
			Certifications: randomCertifications(),
		}
	}
	stats.Generated = len(subs)
	return subs
}

func randomCertifications() []string {
	count := 1 + randomInt(maxCertifications)
	out := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for len(out) < count {
		c := certificationPool[randomInt(len(certificationPool))]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
