package waitlist

import (
	"time"

	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
)

// timestampPrecision matches Postgres timestamptz so stored and in-memory values agree.
const timestampPrecision = time.Microsecond

// Transition moves entry to target. It is the only place a status changes.
// Any status may move to any status. UpdatedAt always advances past its previous
// value and ApprovedAt is set once, on the first move to Approved.
func Transition(entry *models.WaitlistEntry, target enums.WaitlistStatus, now time.Time) error {
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "entry is required")
	}
	if !target.IsValid() {
		return invalidStatusError(string(target))
	}

	stamp := normalizeTime(now)
	if !stamp.After(entry.UpdatedAt) {
		stamp = entry.UpdatedAt.Add(timestampPrecision)
	}

	entry.Status = target
	entry.UpdatedAt = stamp
	if target == enums.WaitlistStatusApproved && entry.ApprovedAt == nil {
		approvedAt := stamp
		entry.ApprovedAt = &approvedAt
	}
	return nil
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(timestampPrecision)
}

func invalidStatusError(value string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid status").WithDetails(map[string]any{
		"status":  value,
		"allowed": enums.WaitlistStatuses(),
	})
}
