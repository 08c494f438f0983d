package delivery

// Report summarizes one batch run.
type Report struct {
	Profile string
	// Attempted counts feed items; association deliveries are not included.
	Attempted        int
	Delivered        int
	AlreadyDelivered int
	Incomplete       int
	Mismatched       int
	Failed           int
	Unsupported      int
	Pages            int
	NextPage         string
	Sequence         string
	Outcomes         []Outcome
}

func (r *Report) add(outcome Outcome) {
	r.Outcomes = append(r.Outcomes, outcome)

	switch outcome.Status {
	case StatusDelivered:
		r.Delivered++
	case StatusAlreadyDelivered:
		r.AlreadyDelivered++
	case StatusIncompleteItem:
		r.Incomplete++
	case StatusMismatchedKind:
		r.Mismatched++
	case StatusUnsupported:
		r.Unsupported++
	default:
		r.Failed++
	}
}

// Outcome returns the last recorded outcome for a source id.
func (r *Report) Outcome(sourceID string) (Outcome, bool) {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].SourceID == sourceID {
			return r.Outcomes[i], true
		}
	}
	return Outcome{}, false
}
