// Package statemachine governs the credential validation lifecycle. It is a
// pure decision function over (current status, requested transition, actor
// role); persistence of the resulting mutation belongs to the caller.
package statemachine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
)

// Status is a credential's validation state.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusAdminApproved    Status = "ADMIN_APPROVED"
	StatusFullyValidated   Status = "FULLY_VALIDATED"
	StatusAdminRejected    Status = "ADMIN_REJECTED"
	StatusReviewerRejected Status = "REVIEWER_REJECTED"
)

// IsValid reports whether the status is a known lifecycle state.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusAdminApproved, StatusFullyValidated,
		StatusAdminRejected, StatusReviewerRejected:
		return true
	}
	return false
}

// IsRejected reports whether the status is one of the re-enterable rejected
// states.
func (s Status) IsRejected() bool {
	return s == StatusAdminRejected || s == StatusReviewerRejected
}

// Transition is a requested lifecycle move.
type Transition string

const (
	TransitionAdminApprove    Transition = "ADMIN_APPROVE"
	TransitionAdminReject     Transition = "ADMIN_REJECT"
	TransitionReviewerApprove Transition = "REVIEWER_APPROVE"
	TransitionReviewerReject  Transition = "REVIEWER_REJECT"
	TransitionResubmit        Transition = "RESUBMIT"
)

type rule struct {
	sources []Status
	role    domain.Role
	target  Status
}

// The full transition table. Every legal move is listed here; anything else is
// an IllegalTransition.
var rules = map[Transition]rule{
	TransitionAdminApprove: {
		sources: []Status{StatusDraft},
		role:    domain.RoleAdmin,
		target:  StatusAdminApproved,
	},
	TransitionAdminReject: {
		sources: []Status{StatusDraft},
		role:    domain.RoleAdmin,
		target:  StatusAdminRejected,
	},
	TransitionReviewerApprove: {
		sources: []Status{StatusAdminApproved},
		role:    domain.RoleReviewer,
		target:  StatusFullyValidated,
	},
	TransitionReviewerReject: {
		sources: []Status{StatusAdminApproved},
		role:    domain.RoleReviewer,
		target:  StatusReviewerRejected,
	},
	TransitionResubmit: {
		sources: []Status{StatusDraft, StatusAdminRejected, StatusReviewerRejected},
		role:    domain.RoleAdmin,
		target:  StatusDraft,
	},
}

// Decide returns the next status for applying transition t to current as role,
// or an error: Forbidden when the role may not drive t, IllegalTransition when
// current is not a valid source for t.
func Decide(current Status, t Transition, role domain.Role) (Status, error) {
	r, ok := rules[t]
	if !ok {
		return "", dErrors.New(dErrors.CodeIllegalTransition,
			fmt.Sprintf("unknown transition %q", t))
	}
	if role != r.role {
		return "", dErrors.New(dErrors.CodeForbidden,
			fmt.Sprintf("role %s may not perform %s", role, t))
	}
	for _, src := range r.sources {
		if current == src {
			return r.target, nil
		}
	}
	return "", dErrors.New(dErrors.CodeIllegalTransition,
		fmt.Sprintf("cannot move from %s to %s via %s", current, r.target, t))
}

// Effects is the single-row mutation a transition produces. A transition never
// touches more than the status, the reviewer reference, the note, and the
// review timestamp.
type Effects struct {
	NextStatus  Status
	SetReviewer *uuid.UUID
	SetNote     *string
	SetTime     *time.Time
	ClearReview bool
}

// EffectsFor describes the mutation for a decided transition. Approvals and
// rejections record the acting actor and timestamp (and the note when one was
// given); resubmit clears any prior review.
func EffectsFor(t Transition, next Status, actorID uuid.UUID, note string, now time.Time) Effects {
	if t == TransitionResubmit {
		return Effects{NextStatus: next, ClearReview: true}
	}
	e := Effects{
		NextStatus:  next,
		SetReviewer: &actorID,
		SetTime:     &now,
	}
	if note != "" {
		e.SetNote = &note
	}
	return e
}
