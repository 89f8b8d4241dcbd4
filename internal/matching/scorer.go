package matching

import (
	"fmt"
	"sort"
	"strings"
)

// Factor weights. Each factor is normalized to [0,1] before weighting, so the
// weights alone express relative importance and the total stays bounded.
// Tunable in one place once labeled outcome data is available.
const (
	WeightSpecialization = 0.35
	WeightGeography      = 0.20
	WeightRating         = 0.20
	WeightExperience     = 0.15
	WeightLanguage       = 0.10

	// 因子值超过该阈值才生成对应的展示理由
	disclosureThreshold = 0.5

	// 单个结果最多展示的理由条数
	maxReasons = 4

	// 主要覆盖地命中得满分，非主要覆盖地打折
	secondaryCoverageValue = 0.7

	// 评分置信度：低于 10 条评价时按比例打折
	ratingConfidenceReviews = 10

	// 经验因子在 10 年处封顶
	experienceCapYears = 10
)

// FallbackReason 所有因子都未过阈值但得分非零时的兜底理由
const FallbackReason = "Experience in related fields"

type factorResult struct {
	value        float64 // pre-weight, in [0,1]
	contribution float64 // weight * value
	reason       string
}

// Score computes the weighted compatibility score between one student and one
// counselor, plus the ordered reasons for it. Total function: valid normalized
// inputs never fail, missing data just contributes zero.
func Score(student StudentProfile, counselor CounselorProfile) (float64, []string) {
	factors := []factorResult{
		specializationFactor(student, counselor),
		geographyFactor(student, counselor),
		ratingFactor(counselor),
		experienceFactor(counselor),
		languageFactor(student, counselor),
	}

	total := 0.0
	for _, f := range factors {
		total += f.contribution
	}
	if total < 0 {
		total = 0
	}
	if total > 1 {
		total = 1
	}

	reasons := buildReasons(factors, total)
	return total, reasons
}

func specializationFactor(student StudentProfile, counselor CounselorProfile) factorResult {
	matched := intersectFold(student.Fields, counselor.Specializations)
	denom := len(student.Fields)
	if denom < 1 {
		denom = 1
	}
	value := float64(len(matched)) / float64(denom)
	if value > 1 {
		value = 1
	}

	f := factorResult{value: value, contribution: WeightSpecialization * value}
	if len(matched) > 0 {
		f.reason = fmt.Sprintf("Specializes in %s", strings.Join(matched, ", "))
	}
	return f
}

func geographyFactor(student StudentProfile, counselor CounselorProfile) factorResult {
	value := 0.0
	country := ""
	for _, cov := range counselor.Coverage {
		if !containsFold(student.Countries, cov.Country) {
			continue
		}
		v := secondaryCoverageValue
		if cov.Primary {
			v = 1.0
		}
		if v > value {
			value = v
			country = cov.Country
		}
	}

	f := factorResult{value: value, contribution: WeightGeography * value}
	if country != "" {
		f.reason = fmt.Sprintf("Local expertise in %s", country)
	}
	return f
}

func ratingFactor(counselor CounselorProfile) factorResult {
	confidence := float64(counselor.Reviews) / float64(ratingConfidenceReviews)
	if confidence > 1 {
		confidence = 1
	}
	value := counselor.Rating / 5.0 * confidence

	f := factorResult{value: value, contribution: WeightRating * value}
	if value > 0 {
		f.reason = fmt.Sprintf("Highly rated (%.1f/5.0)", counselor.Rating)
	}
	return f
}

func experienceFactor(counselor CounselorProfile) factorResult {
	value := float64(counselor.YearsExperience) / float64(experienceCapYears)
	if value > 1 {
		value = 1
	}

	f := factorResult{value: value, contribution: WeightExperience * value}
	if counselor.YearsExperience > 0 {
		f.reason = fmt.Sprintf("%d+ years experience", counselor.YearsExperience)
	}
	return f
}

func languageFactor(student StudentProfile, counselor CounselorProfile) factorResult {
	matched := intersectFold(student.Languages, counselor.Languages)
	value := 0.0
	if len(matched) > 0 {
		value = 1.0
	}

	f := factorResult{value: value, contribution: WeightLanguage * value}
	if len(matched) > 0 {
		f.reason = fmt.Sprintf("Speaks %s", strings.Join(matched, ", "))
	}
	return f
}

// buildReasons 只披露过阈值的因子，按加权贡献降序，最多 maxReasons 条。
// 非零得分永远至少返回一条理由，避免调用方拿到无解释的结果。
func buildReasons(factors []factorResult, total float64) []string {
	disclosed := make([]factorResult, 0, len(factors))
	for _, f := range factors {
		if f.value > disclosureThreshold && f.reason != "" {
			disclosed = append(disclosed, f)
		}
	}

	sort.SliceStable(disclosed, func(i, j int) bool {
		return disclosed[i].contribution > disclosed[j].contribution
	})

	if len(disclosed) > maxReasons {
		disclosed = disclosed[:maxReasons]
	}

	reasons := make([]string, 0, len(disclosed))
	for _, f := range disclosed {
		reasons = append(reasons, f.reason)
	}

	if len(reasons) == 0 && total > 0 {
		reasons = append(reasons, FallbackReason)
	}
	return reasons
}
