// Package domain defines the scheduling error taxonomy shared by all services.
//
// Every business-rule rejection leaves a service as an *Error carrying a Kind,
// so callers (HTTP layer, tests) can branch on the rule that failed without
// parsing messages. Raw storage errors never escape a service: duplicate-key
// violations on the booking slot index are translated to KindSlotTaken before
// they cross the service boundary.
package domain

import (
	"errors"
	"fmt"
)

// Kind identifies a category of scheduling failure.
type Kind string

// Failure kinds.
const (
	// KindUnschedulableDay means the target day is a weekend or blocked.
	KindUnschedulableDay Kind = "unschedulable_day"
	// KindSlotTaken means another active event already occupies the slot.
	KindSlotTaken Kind = "slot_taken"
	// KindAlreadyCancelled means the event is already soft-deleted.
	KindAlreadyCancelled Kind = "already_cancelled"
	// KindNotCancelled means restore was called on an active event.
	KindNotCancelled Kind = "not_cancelled"
	// KindNotFound means the referenced record does not exist.
	KindNotFound Kind = "not_found"
	// KindInvalidRange means end precedes start or the range is malformed.
	KindInvalidRange Kind = "invalid_range"
	// KindCrossesYearBoundary means a vacation period spans two years.
	KindCrossesYearBoundary Kind = "crosses_year_boundary"
	// KindPeriodLimitExceeded means the user already has the maximum periods for the year.
	KindPeriodLimitExceeded Kind = "period_limit_exceeded"
	// KindAnnualQuotaExceeded means the yearly vacation day quota would be exceeded.
	KindAnnualQuotaExceeded Kind = "annual_quota_exceeded"
	// KindSelfOverlap means the period overlaps another period of the same user.
	KindSelfOverlap Kind = "self_overlap"
	// KindRoleCollision means the period overlaps a period of another user holding a protected tag.
	KindRoleCollision Kind = "role_collision"
	// KindForbidden means the actor may not operate on the target record.
	KindForbidden Kind = "forbidden"
)

// Error is a structured scheduling failure.
type Error struct {
	Kind    Kind
	Message string

	// DaysUsed and DaysRemaining carry quota context for
	// KindAnnualQuotaExceeded; zero otherwise.
	DaysUsed      int
	DaysRemaining int
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// New creates a domain error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// QuotaExceeded creates a KindAnnualQuotaExceeded error carrying day counts.
func QuotaExceeded(used, remaining int) *Error {
	return &Error{
		Kind:          KindAnnualQuotaExceeded,
		Message:       fmt.Sprintf("annual limit exceeded: %d day(s) already used this year, %d day(s) remaining", used, remaining),
		DaysUsed:      used,
		DaysRemaining: remaining,
	}
}

// KindOf returns the Kind of err, or "" if err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
