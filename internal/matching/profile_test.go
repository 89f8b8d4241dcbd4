package matching

import (
	"errors"
	"testing"

	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStudent_SplitsAndTrims(t *testing.T) {
	raw := &model.StudentProfile{
		UserID:             7,
		FieldsOfStudy:      " Business , Finance ,, business ",
		TargetCountries:    "Canada",
		PreferredLanguages: "",
		BudgetBand:         " Medium ",
	}

	p, err := NormalizeStudent(raw)
	require.NoError(t, err)

	assert.Equal(t, uint(7), p.ID)
	assert.Equal(t, []string{"Business", "Finance"}, p.Fields) // deduped case-insensitively, order kept
	assert.Equal(t, []string{"Canada"}, p.Countries)
	assert.Empty(t, p.Languages)
	assert.Equal(t, "medium", p.BudgetBand)
}

func TestNormalizeStudent_MissingIdentity(t *testing.T) {
	_, err := NormalizeStudent(&model.StudentProfile{})
	assert.True(t, errors.Is(err, util.ErrValidation))

	_, err = NormalizeStudent(nil)
	assert.True(t, errors.Is(err, util.ErrValidation))
}

func TestNormalizeCounselor_DefaultsAndClamps(t *testing.T) {
	raw := &model.Counselor{
		BaseModel:       model.BaseModel{ID: 3},
		FullName:        "  Aigerim Bekova ",
		Specializations: "University Applications, Scholarship Guidance",
		AverageRating:   6.3, // dirty data from an old import
		TotalReviews:    -2,
		YearsExperience: -1,
		Coverage: []model.CounselorCoverage{
			{Country: " Australia ", IsPrimaryLocation: true},
			{Country: ""},
		},
	}

	p, err := NormalizeCounselor(raw)
	require.NoError(t, err)

	assert.Equal(t, "Aigerim Bekova", p.FullName)
	assert.Equal(t, 5.0, p.Rating)
	assert.Equal(t, 0, p.Reviews)
	assert.Equal(t, 0, p.YearsExperience)
	require.Len(t, p.Coverage, 1)
	assert.Equal(t, "Australia", p.Coverage[0].Country)
	assert.True(t, p.Coverage[0].Primary)
}

func TestNormalizeCounselor_MissingIdentity(t *testing.T) {
	_, err := NormalizeCounselor(&model.Counselor{})
	assert.True(t, errors.Is(err, util.ErrValidation))
}
