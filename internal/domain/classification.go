package domain

type Classification struct {
	Category   Category
	Severity   Severity
	Summary    string
	Feedback   string
	SafetyFlag bool
	// Fallback is set when the result did not come from the classifier.
	Fallback bool
}

// Sensitive reports whether the report must be identity-protected.
func (c Classification) Sensitive() bool {
	return c.SafetyFlag || c.Category == CategorySecurity
}

// FallbackClassification is the deterministic result used when the classifier
// cannot answer.
func FallbackClassification(description string) Classification {
	return Classification{
		Category: CategoryInfrastructure,
		Severity: SeverityMedium,
		Summary:  Truncate(description, FallbackTitleLength),
		Feedback: FallbackFeedback,
		Fallback: true,
	}
}

// Truncate cuts s to n runes and marks the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
