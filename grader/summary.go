package grader

// Summary counts passed records out of the records that ran a case
func Summary(results []Result) (passed, total int) {
	for _, r := range results {
		if r.Status.Gated() {
			continue
		}
		total++
		if r.Passed {
			passed++
		}
	}
	return passed, total
}

// Rejected reports whether results is the single record of a submission
// that never ran
func Rejected(results []Result) bool {
	return len(results) == 1 && results[0].Status.Gated()
}
