package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGolden compares a transcript with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./harness -update
func AssertGolden(t *testing.T, rep *Report) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, rep.Scenario, []byte(rep.Transcript))
}
