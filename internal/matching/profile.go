// Package matching implements the counselor matching engine: profile
// normalization, weighted-factor scoring with human-readable reasons, and
// deterministic ranking. Everything in this package is a pure function over
// in-memory snapshots; all I/O stays in the service layer.
package matching

import (
	"strings"

	"edu_consult_backend/internal/model"
	"edu_consult_backend/internal/util"
)

// StudentProfile 规范化后的学生画像，评分期间不可变
type StudentProfile struct {
	ID         uint
	Fields     []string
	Countries  []string
	Languages  []string
	BudgetBand string
	Urgency    string
}

type Coverage struct {
	Country string
	Region  string
	City    string
	Primary bool
}

// CounselorProfile 规范化后的顾问画像
type CounselorProfile struct {
	ID              uint
	FullName        string
	Specializations []string
	Coverage        []Coverage
	Rating          float64
	Reviews         int
	YearsExperience int
	Languages       []string
	HourlyRate      float64
	Currency        string
	Available       bool
	Capacity        int // 0 表示不限
}

// NormalizeStudent converts the raw stored profile into a canonical feature
// set. Identity is the only required field; everything else falls back to a
// neutral default so scoring stays total over sparse data.
func NormalizeStudent(raw *model.StudentProfile) (StudentProfile, error) {
	if raw == nil || raw.UserID == 0 {
		return StudentProfile{}, util.ErrValidation
	}
	return StudentProfile{
		ID:         raw.UserID,
		Fields:     splitList(raw.FieldsOfStudy),
		Countries:  splitList(raw.TargetCountries),
		Languages:  splitList(raw.PreferredLanguages),
		BudgetBand: strings.ToLower(strings.TrimSpace(raw.BudgetBand)),
		Urgency:    strings.ToLower(strings.TrimSpace(raw.Urgency)),
	}, nil
}

// NormalizeCounselor converts a stored counselor row (with coverage preloaded)
// into the comparable form the scorer operates on.
func NormalizeCounselor(raw *model.Counselor) (CounselorProfile, error) {
	if raw == nil || raw.ID == 0 {
		return CounselorProfile{}, util.ErrValidation
	}

	coverage := make([]Coverage, 0, len(raw.Coverage))
	for _, cov := range raw.Coverage {
		country := strings.TrimSpace(cov.Country)
		if country == "" {
			continue
		}
		coverage = append(coverage, Coverage{
			Country: country,
			Region:  strings.TrimSpace(cov.StateProvince),
			City:    strings.TrimSpace(cov.City),
			Primary: cov.IsPrimaryLocation,
		})
	}

	rating := raw.AverageRating
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	years := raw.YearsExperience
	if years < 0 {
		years = 0
	}
	reviews := raw.TotalReviews
	if reviews < 0 {
		reviews = 0
	}

	return CounselorProfile{
		ID:              raw.ID,
		FullName:        strings.TrimSpace(raw.FullName),
		Specializations: splitList(raw.Specializations),
		Coverage:        coverage,
		Rating:          rating,
		Reviews:         reviews,
		YearsExperience: years,
		Languages:       splitList(raw.LanguagesSpoken),
		HourlyRate:      raw.HourlyRate,
		Currency:        raw.Currency,
		Available:       raw.IsAvailable,
		Capacity:        raw.Capacity,
	}, nil
}

// splitList 将逗号分隔的字符串拆成去重后的集合，保留原始大小写用于展示，
// 比较时统一折叠大小写（见 containsFold）。
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func containsFold(set []string, value string) bool {
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

// intersectFold 返回 a 中与 b 有大小写无关交集的元素，保持 a 的顺序
func intersectFold(a, b []string) []string {
	var out []string
	for _, v := range a {
		if containsFold(b, v) {
			out = append(out, v)
		}
	}
	return out
}
