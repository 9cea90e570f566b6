package enums

import "fmt"

// WaitlistStatus maps to the status column of waitlist_entries.
type WaitlistStatus string

const (
	WaitlistStatusPending  WaitlistStatus = "Pending"
	WaitlistStatusApproved WaitlistStatus = "Approved"
	WaitlistStatusRejected WaitlistStatus = "Rejected"
)

var validWaitlistStatuses = []WaitlistStatus{
	WaitlistStatusPending,
	WaitlistStatusApproved,
	WaitlistStatusRejected,
}

// WaitlistStatuses returns the canonical statuses in display order.
func WaitlistStatuses() []WaitlistStatus {
	out := make([]WaitlistStatus, len(validWaitlistStatuses))
	copy(out, validWaitlistStatuses)
	return out
}

// String implements fmt.Stringer.
func (s WaitlistStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WaitlistStatus.
func (s WaitlistStatus) IsValid() bool {
	for _, candidate := range validWaitlistStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseWaitlistStatus converts raw input into a WaitlistStatus. Matching is exact.
func ParseWaitlistStatus(value string) (WaitlistStatus, error) {
	for _, candidate := range validWaitlistStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid waitlist status %q", value)
}
