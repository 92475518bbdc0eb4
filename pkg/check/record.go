package check

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
)

// Record is a persisted snapshot of one evaluation: the subject checked,
// the requirement tree as it stood at check time, the boolean outcome, and
// the flattened failure reasons. Records are immutable after creation and
// deliberately decoupled from the live Prerequisite, so history stays
// meaningful even if the Prerequisite is later edited or deleted.
type Record struct {
	ID             uuid.UUID              `json:"id"`
	Subject        requirement.SubjectRef `json:"subject"`
	Requirements   *requirement.Node      `json:"requirements"`
	Passed         bool                   `json:"passed"`
	FailureReasons []string               `json:"failure_reasons,omitempty"`
	CheckedAt      time.Time              `json:"checked_at"`
}

// NewRecord captures a check outcome. The requirement tree is deep-copied
// so later edits to the source Prerequisite cannot retroactively alter the
// audit trail. No validation happens here; the tree was validated before
// the evaluation that produced result.
func NewRecord(subject requirement.SubjectRef, tree *requirement.Node, result *Result) *Record {
	return &Record{
		ID:             uuid.New(),
		Subject:        subject,
		Requirements:   tree.Clone(),
		Passed:         result.Passed,
		FailureReasons: result.FailureReasons(),
		CheckedAt:      time.Now().UTC(),
	}
}
