package matching

import (
	"sort"
	"strings"
)

// DefaultLimit 未指定时返回的最大结果数
const DefaultLimit = 20

// Options 过滤与截断选项。每个过滤器都在评分之后应用，过滤收窄的是已经
// 排好序的集合，从不短路评分，因此理由在过滤条件变化时保持一致。
type Options struct {
	MinScore       float64
	Limit          int
	Specialization string
	Country        string
	MinRating      float64
	AvailableOnly  bool
	// PartialOK: 评分批次被取消时返回已算出的部分结果而不是整体失败
	PartialOK bool
}

// Match 单个匹配结果，按请求重算，从不持久化
type Match struct {
	CounselorID uint             `json:"counselorId"`
	Score       float64          `json:"score"`
	Reasons     []string         `json:"reasons"`
	Counselor   CounselorProfile `json:"counselor"`
}

// Rank scores every counselor against the student, then filters, sorts and
// truncates. Deterministic: identical inputs produce identical ordering.
func Rank(student StudentProfile, counselors []CounselorProfile, opts Options) []Match {
	matches := make([]Match, 0, len(counselors))
	for _, c := range counselors {
		score, reasons := Score(student, c)
		matches = append(matches, Match{
			CounselorID: c.ID,
			Score:       score,
			Reasons:     reasons,
			Counselor:   c,
		})
	}
	return Apply(matches, opts)
}

// Apply filters, sorts and truncates an already-scored batch. Split out from
// Rank so the service layer can score candidates concurrently and still share
// the exact same reduction step.
func Apply(matches []Match, opts Options) []Match {
	filtered := make([]Match, 0, len(matches))
	for _, m := range matches {
		if !passes(m, opts) {
			continue
		}
		filtered = append(filtered, m)
	}

	// score desc, then rating desc, then reviews desc, then id asc —
	// the full key makes repeated identical requests return identical order
	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i], filtered[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Counselor.Rating != b.Counselor.Rating {
			return a.Counselor.Rating > b.Counselor.Rating
		}
		if a.Counselor.Reviews != b.Counselor.Reviews {
			return a.Counselor.Reviews > b.Counselor.Reviews
		}
		return a.CounselorID < b.CounselorID
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

func passes(m Match, opts Options) bool {
	if m.Score < opts.MinScore {
		return false
	}
	if opts.AvailableOnly && !m.Counselor.Available {
		return false
	}
	if m.Counselor.Rating < opts.MinRating {
		return false
	}
	if opts.Specialization != "" && !containsFold(m.Counselor.Specializations, opts.Specialization) {
		return false
	}
	if opts.Country != "" {
		found := false
		for _, cov := range m.Counselor.Coverage {
			if strings.EqualFold(cov.Country, opts.Country) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
