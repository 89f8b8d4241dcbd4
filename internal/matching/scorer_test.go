package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lawStudent() StudentProfile {
	return StudentProfile{
		ID:        1,
		Fields:    []string{"Law"},
		Countries: []string{"Canada"},
		Languages: []string{"English"},
	}
}

// Scenario from the product team: counselor with zero field/geo overlap but
// strong rating, experience and a shared language.
func TestScore_NoOverlapCounselor(t *testing.T) {
	counselor := CounselorProfile{
		ID:              42,
		Specializations: []string{"University Applications", "Scholarship Guidance"},
		Coverage:        []Coverage{{Country: "Australia", Primary: true}},
		Rating:          4.9,
		Reviews:         127,
		YearsExperience: 8,
		Languages:       []string{"English", "Mandarin"},
	}

	score, reasons := Score(lawStudent(), counselor)

	// 0.35*0 + 0.20*0 + 0.20*0.98 + 0.15*0.8 + 0.10*1.0
	assert.InDelta(t, 0.416, score, 0.005)
	assert.Equal(t, []string{
		"Highly rated (4.9/5.0)",
		"8+ years experience",
		"Speaks English",
	}, reasons)
}

func TestScore_FullMatch(t *testing.T) {
	counselor := CounselorProfile{
		ID:              9,
		Specializations: []string{"Law", "Visa Guidance"},
		Coverage:        []Coverage{{Country: "Canada", Primary: true}},
		Rating:          5.0,
		Reviews:         50,
		YearsExperience: 15,
		Languages:       []string{"English"},
	}

	score, reasons := Score(lawStudent(), counselor)

	assert.InDelta(t, 1.0, score, 1e-9)
	require.Len(t, reasons, 4, "reasons are capped at four")
	assert.Equal(t, "Specializes in Law", reasons[0], "specialization carries the largest weighted contribution")
}

func TestScore_Bounded(t *testing.T) {
	students := []StudentProfile{
		{},
		lawStudent(),
		{ID: 2, Fields: []string{"a", "b", "c"}, Countries: []string{"x"}, Languages: []string{"y"}},
	}
	counselors := []CounselorProfile{
		{},
		{ID: 1, Rating: 5, Reviews: 1000, YearsExperience: 100},
		{ID: 2, Specializations: []string{"a", "b", "c"}, Coverage: []Coverage{{Country: "x", Primary: true}}, Rating: 5, Reviews: 50, YearsExperience: 20, Languages: []string{"y"}},
	}

	for _, s := range students {
		for _, c := range counselors {
			score, _ := Score(s, c)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

// Increasing specialization overlap, all else fixed, never decreases the score.
func TestScore_MonotonicInSpecializationOverlap(t *testing.T) {
	student := StudentProfile{
		ID:        1,
		Fields:    []string{"Law", "Business", "Finance"},
		Countries: []string{"Canada"},
		Languages: []string{"English"},
	}
	base := CounselorProfile{
		ID:              3,
		Rating:          4.2,
		Reviews:         30,
		YearsExperience: 6,
		Languages:       []string{"English"},
	}

	prev := -1.0
	specs := [][]string{
		nil,
		{"Law"},
		{"Law", "Business"},
		{"Law", "Business", "Finance"},
	}
	for _, s := range specs {
		c := base
		c.Specializations = s
		score, _ := Score(student, c)
		assert.GreaterOrEqual(t, score, prev, "specs=%v", s)
		prev = score
	}
}

// A 5.0 rating from a single review must score below a 4.8 from 50 reviews.
func TestScore_RatingConfidenceDiscount(t *testing.T) {
	student := lawStudent()

	oneReview := CounselorProfile{ID: 1, Rating: 5.0, Reviews: 1}
	manyReviews := CounselorProfile{ID: 2, Rating: 4.8, Reviews: 50}

	s1, _ := Score(student, oneReview)
	s2, _ := Score(student, manyReviews)
	assert.Less(t, s1, s2)
}

func TestScore_FallbackReasonWhenNothingClearsThreshold(t *testing.T) {
	counselor := CounselorProfile{
		ID:              5,
		Rating:          3.0, // factor 0.6 * low confidence => below threshold
		Reviews:         2,
		YearsExperience: 3, // factor 0.3
	}

	score, reasons := Score(lawStudent(), counselor)
	require.Greater(t, score, 0.0)
	assert.Equal(t, []string{FallbackReason}, reasons)
}

func TestScore_ZeroCounselorHasNoReasons(t *testing.T) {
	score, reasons := Score(lawStudent(), CounselorProfile{ID: 6})
	assert.Zero(t, score)
	assert.Empty(t, reasons)
}

// A counselor with zero specialization and geography overlap cannot clear ~0.3
// even with everything else maxed out: 0.20 + 0.15 + 0.10 = 0.45 is the
// ceiling, and realistic ratings keep it near 0.42 — specialization dominates.
func TestScore_NoOverlapCeiling(t *testing.T) {
	counselor := CounselorProfile{
		ID:              7,
		Rating:          5.0,
		Reviews:         1000,
		YearsExperience: 40,
		Languages:       []string{"English"},
	}
	score, _ := Score(lawStudent(), counselor)
	assert.LessOrEqual(t, score, WeightRating+WeightExperience+WeightLanguage)
}

func TestScore_SecondaryCoverageDiscount(t *testing.T) {
	student := lawStudent()
	primary := CounselorProfile{ID: 1, Coverage: []Coverage{{Country: "Canada", Primary: true}}}
	secondary := CounselorProfile{ID: 2, Coverage: []Coverage{{Country: "Canada"}}}

	sp, _ := Score(student, primary)
	ss, _ := Score(student, secondary)
	assert.InDelta(t, WeightGeography*1.0, sp, 1e-9)
	assert.InDelta(t, WeightGeography*secondaryCoverageValue, ss, 1e-9)
}
