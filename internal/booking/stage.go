package booking

// Stage is one state of the checkout state machine.
type Stage string

const (
	StageSelectingSeats   Stage = "SELECTING_SEATS"   // initial stage, seat toggling allowed
	StageReviewingSummary Stage = "REVIEWING_SUMMARY" // selection finalized, breakdown shown
	StageAwaitingPayment  Stage = "AWAITING_PAYMENT"  // order created, waiting for payment proof
	StageCompleted        Stage = "COMPLETED"         // terminal, payment recorded
	StageCancelled        Stage = "CANCELLED"         // terminal, user aborted
)

// allowedTransitions lists the valid target stages for each stage.  A stage
// missing a target cannot reach it by any operation.  Terminal stages have
// no outgoing transitions.
var allowedTransitions = map[Stage][]Stage{
	StageSelectingSeats: {
		StageReviewingSummary,
		StageCancelled,
	},
	StageReviewingSummary: {
		StageAwaitingPayment,
		StageSelectingSeats,
		StageCancelled,
	},
	StageAwaitingPayment: {
		StageCompleted,
		StageReviewingSummary, // seats taken server-side forces a return to summary
		StageCancelled,
	},
	StageCompleted: {},
	StageCancelled: {},
}

// CanTransition reports whether moving from one stage to another is allowed.
func CanTransition(from, to Stage) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the stage has no outgoing transitions.
func (s Stage) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}
