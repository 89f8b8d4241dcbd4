package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidateSet() []CounselorProfile {
	return []CounselorProfile{
		{
			ID:              1,
			Specializations: []string{"Law"},
			Coverage:        []Coverage{{Country: "Canada", Primary: true}},
			Rating:          4.5, Reviews: 40, YearsExperience: 10,
			Languages: []string{"English"},
			Available: true,
		},
		{
			ID:              2,
			Specializations: []string{"Business"},
			Rating:          4.9, Reviews: 127, YearsExperience: 8,
			Languages: []string{"English", "Mandarin"},
			Available: true,
		},
		{
			ID:              3,
			Specializations: []string{"Law"},
			Coverage:        []Coverage{{Country: "Canada"}},
			Rating:          3.9, Reviews: 12, YearsExperience: 4,
			Languages: []string{"French"},
			Available: false,
		},
	}
}

func TestRank_Deterministic(t *testing.T) {
	student := lawStudent()
	counselors := candidateSet()
	opts := Options{Limit: 10}

	first := Rank(student, counselors, opts)
	second := Rank(student, counselors, opts)

	assert.Equal(t, first, second, "identical requests must return identical ordering and scores")
}

func TestRank_OrderAndReasons(t *testing.T) {
	results := Rank(lawStudent(), candidateSet(), Options{})

	require.Len(t, results, 3)
	assert.Equal(t, uint(1), results[0].CounselorID, "full overlap ranks first")
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, r := range results {
		if r.Score > 0 {
			assert.NotEmpty(t, r.Reasons, "counselor %d", r.CounselorID)
		}
	}
}

func TestRank_TieBreakByRatingThenReviewsThenID(t *testing.T) {
	student := StudentProfile{ID: 1}
	// identical zero-factor profiles except rating/reviews; score for all is
	// rating-driven, so force exact score ties with equal ratings
	counselors := []CounselorProfile{
		{ID: 30, Rating: 4.0, Reviews: 10},
		{ID: 20, Rating: 4.0, Reviews: 10},
		{ID: 10, Rating: 4.0, Reviews: 25},
	}

	results := Rank(student, counselors, Options{})
	require.Len(t, results, 3)
	assert.Equal(t, uint(10), results[0].CounselorID, "more reviews wins the tie")
	assert.Equal(t, uint(20), results[1].CounselorID, "lower id wins the final tie")
	assert.Equal(t, uint(30), results[2].CounselorID)
}

func TestRank_FiltersApplyAfterScoring(t *testing.T) {
	student := lawStudent()

	onlyAvailable := Rank(student, candidateSet(), Options{AvailableOnly: true})
	for _, r := range onlyAvailable {
		assert.True(t, r.Counselor.Available)
	}

	lawOnly := Rank(student, candidateSet(), Options{Specialization: "law"})
	require.Len(t, lawOnly, 2)

	canada := Rank(student, candidateSet(), Options{Country: "canada"})
	require.Len(t, canada, 2)

	rated := Rank(student, candidateSet(), Options{MinRating: 4.6})
	require.Len(t, rated, 1)
	assert.Equal(t, uint(2), rated[0].CounselorID)

	// filtering never changes the reasons a counselor would get unfiltered
	unfiltered := Rank(student, candidateSet(), Options{})
	for _, f := range lawOnly {
		for _, u := range unfiltered {
			if u.CounselorID == f.CounselorID {
				assert.Equal(t, u.Reasons, f.Reasons)
			}
		}
	}
}

func TestRank_MinScoreAndLimit(t *testing.T) {
	student := lawStudent()

	none := Rank(student, candidateSet(), Options{MinScore: 0.99})
	assert.Empty(t, none, "empty result is valid, not an error")

	one := Rank(student, candidateSet(), Options{Limit: 1})
	assert.Len(t, one, 1)
}

func TestRank_DefaultLimit(t *testing.T) {
	student := StudentProfile{ID: 1}
	counselors := make([]CounselorProfile, 0, 30)
	for i := 1; i <= 30; i++ {
		counselors = append(counselors, CounselorProfile{ID: uint(i), Rating: 4, Reviews: 20})
	}

	results := Rank(student, counselors, Options{})
	assert.Len(t, results, DefaultLimit)
}
