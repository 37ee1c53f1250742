package models

// Grade is the letter band a score falls into.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// QualifiedScore is the minimum score counted as qualified.
const QualifiedScore = 60

// GradeForScore maps a 0-100 score onto its band. It is the only place grades come from.
func GradeForScore(score int) Grade {
	switch {
	case score >= 86:
		return GradeA
	case score >= 76:
		return GradeB
	case score >= QualifiedScore:
		return GradeC
	default:
		return GradeD
	}
}

// ClampScore bounds a score to [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func IsQualified(score int) bool {
	return score >= QualifiedScore
}

// Rank orders grades so that A > B > C > D; unknown grades rank lowest.
func (g Grade) Rank() int {
	switch g {
	case GradeA:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	case GradeD:
		return 1
	default:
		return 0
	}
}

// ParseGrade accepts upper or lower case letters.
func ParseGrade(s string) (Grade, bool) {
	switch Grade(s) {
	case GradeA, "a":
		return GradeA, true
	case GradeB, "b":
		return GradeB, true
	case GradeC, "c":
		return GradeC, true
	case GradeD, "d":
		return GradeD, true
	}
	return "", false
}

// GradesAtLeast lists min and every better grade.
func GradesAtLeast(min Grade) []Grade {
	var out []Grade
	for _, g := range []Grade{GradeA, GradeB, GradeC, GradeD} {
		if g.Rank() >= min.Rank() {
			out = append(out, g)
		}
	}
	return out
}
