// Package seed builds the synthetic portal fixtures and writes them through a
// repository.SeedWriter.
package seed

import (
	"math"
	"math/rand/v2"
	"time"

	"studentportal/internal/model"
)

// ActivityDays is the length of every generated score series.
const ActivityDays = 14

// ScoredSubjects are the subjects that get a score activity series.
var ScoredSubjects = []string{"Mathematics", "Physics", "Chemistry"}

// Generator produces score activity series. A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator uses rng for the noise term and now for the series end date.
// Nil arguments select a randomly seeded source and time.Now.
func NewGenerator(rng *rand.Rand, now func() time.Time) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if now == nil {
		now = time.Now
	}
	return &Generator{rng: rng, now: now}
}

// Series returns ActivityDays points for subject, oldest first, ending today.
func (g *Generator) Series(userID int, subject string) []model.ScorePoint {
	today := g.now()
	points := make([]model.ScorePoint, 0, ActivityDays)
	for i := 0; i < ActivityDays; i++ {
		date := today.AddDate(0, 0, -(ActivityDays - 1 - i)).Format(time.DateOnly)
		points = append(points, model.ScorePoint{
			UserID:  userID,
			Subject: subject,
			Date:    date,
			Score:   g.Score(subject, i),
		})
	}
	return points
}

// Score is the value for day index i of subject, clamped to [0, 100].
// The waveform sum is truncated toward zero before the base is added.
func (g *Generator) Score(subject string, i int) int {
	x := float64(i)
	var score int
	switch subject {
	case "Mathematics":
		score = 60 + int(20*math.Sin(x/2.0)+10*math.Cos(x/3.0)+float64(g.randInt(-5, 5)))
	case "Physics":
		score = 45 + int(30*math.Cos(x/1.7)+8*math.Sin(x/2.5)+float64(g.randInt(-8, 8)))
	case "Chemistry":
		score = 55 + int(18*math.Sin(x/1.3)-12*math.Cos(x/2.2)+float64(g.randInt(-10, 10)))
	default:
		score = 50 + g.randInt(-10, 10)
	}
	return max(0, min(100, score))
}

// randInt is uniform over the closed range [lo, hi].
func (g *Generator) randInt(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}
