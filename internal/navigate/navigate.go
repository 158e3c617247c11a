// Package navigate is the state machine over the section sequence:
// PersonalInfo, then Section(0)..Section(n-1), then Submitted. Guards fail
// by returning errors and leaving the position unchanged.
package navigate

import (
	"context"
	"errors"

	"formflow/internal/model"
	"formflow/internal/store"
	"formflow/internal/validate"
)

// Stage is the coarse position kind.
type Stage int

const (
	StagePersonalInfo Stage = iota
	StageSection
	StageSubmitted
)

// Position is the tagged navigational state. Section is meaningful only
// for StageSection.
type Position struct {
	Stage   Stage
	Section int
}

// PersonalInfo is the initial position.
func PersonalInfo() Position { return Position{Stage: StagePersonalInfo} }

// Section addresses the i-th section.
func Section(i int) Position { return Position{Stage: StageSection, Section: i} }

// Submitted is the terminal position.
func Submitted() Position { return Position{Stage: StageSubmitted} }

// Index converts to the snapshot integer encoding, with -1 for the
// personal info page.
func (p Position) Index() int {
	switch p.Stage {
	case StageSection:
		return p.Section
	case StageSubmitted:
		return -2
	default:
		return -1
	}
}

// FromIndex converts the snapshot integer encoding back to a position,
// clamping out-of-range values to the personal info page so a corrupted
// snapshot cannot address a missing section.
func FromIndex(i, sectionCount int) Position {
	if i >= 0 && i < sectionCount {
		return Section(i)
	}
	return PersonalInfo()
}

// Before reports whether p comes strictly before other in display order.
func (p Position) Before(other Position) bool {
	return p.order() < other.order()
}

func (p Position) order() int {
	switch p.Stage {
	case StagePersonalInfo:
		return -1
	case StageSubmitted:
		return 1 << 30
	default:
		return p.Section
	}
}

// Outcome is the trinary result of the duplicate-submission guard. The
// fail-open policy lives in whoever produces Unknown: it allows.
type Outcome int

const (
	Allow Outcome = iota
	Deny
	Unknown
)

// GuardFunc checks whether a respondent email may begin the form.
type GuardFunc func(ctx context.Context, email string) Outcome

// AllowAll is the guard used when no backend check is wired.
func AllowAll(context.Context, string) Outcome { return Allow }

// ErrAlreadySubmitted is returned when the duplicate guard denies entry.
// Recoverable only by contacting an administrator.
var ErrAlreadySubmitted = errors.New("a response for this form has already been submitted with this email")

// ErrSubmitted is returned for navigation attempts after submission.
var ErrSubmitted = errors.New("form already submitted")

// Navigator tracks the current position and enforces transition guards.
type Navigator struct {
	form  *model.Form
	store *store.AnswerStore
	guard GuardFunc

	pos    Position
	errors []string
}

// New creates a navigator at the personal info page.
func New(form *model.Form, st *store.AnswerStore, guard GuardFunc) *Navigator {
	if guard == nil {
		guard = AllowAll
	}
	return &Navigator{
		form:  form,
		store: st,
		guard: guard,
		pos:   PersonalInfo(),
	}
}

// Position returns the current position.
func (n *Navigator) Position() Position { return n.pos }

// Errors returns the question ids (or respondent field names) recorded by
// the last failed guard. Empty after a successful transition. The returned
// slice is a copy; mutating it does not touch the navigator.
func (n *Navigator) Errors() []string {
	out := make([]string, len(n.errors))
	copy(out, n.errors)
	return out
}

// ClearError drops a single id from the recorded error set. Called when
// live validation sees the question become satisfied.
func (n *Navigator) ClearError(id string) {
	for i, e := range n.errors {
		if e == id {
			n.errors = append(n.errors[:i], n.errors[i+1:]...)
			return
		}
	}
}

// Restore places the navigator at a previously-saved position.
func (n *Navigator) Restore(pos Position) {
	if pos.Stage == StageSection && (pos.Section < 0 || pos.Section >= len(n.form.Sections)) {
		pos = PersonalInfo()
	}
	if pos.Stage == StageSubmitted {
		pos = PersonalInfo()
	}
	n.pos = pos
	n.errors = nil
}

// Advance moves forward one position, running the guards for the current
// one. A failed guard records errors and leaves the position unchanged.
func (n *Navigator) Advance(ctx context.Context, r model.Respondent) error {
	switch n.pos.Stage {
	case StagePersonalInfo:
		return n.leavePersonalInfo(ctx, r)
	case StageSection:
		return n.leaveSection()
	default:
		return ErrSubmitted
	}
}

func (n *Navigator) leavePersonalInfo(ctx context.Context, r model.Respondent) error {
	if len(n.form.Sections) == 0 {
		return errors.New("form has no sections")
	}
	if fields := validate.RespondentErrors(n.form.Settings, r); len(fields) > 0 {
		n.errors = fields
		return &validate.ValidationError{
			QuestionIDs: fields,
			Message:     "please provide your name and a valid email",
		}
	}

	outcome := n.guard(ctx, r.Email)

	// The guard may have taken time; if something moved the session
	// meanwhile, its result is no longer relevant and must not be applied.
	if n.pos.Stage != StagePersonalInfo {
		return nil
	}
	if outcome == Deny {
		return ErrAlreadySubmitted
	}

	n.pos = Section(0)
	n.errors = nil
	return nil
}

func (n *Navigator) leaveSection() error {
	i := n.pos.Section
	if i >= len(n.form.Sections)-1 {
		return errors.New("already at the last section; submit instead")
	}
	if ids := validate.SectionErrors(&n.form.Sections[i], n.store); len(ids) > 0 {
		n.errors = ids
		return &validate.ValidationError{
			QuestionIDs: ids,
			Message:     "please answer all required questions before proceeding",
		}
	}
	n.pos = Section(i + 1)
	n.errors = nil
	return nil
}

// Retreat moves backward one position unconditionally. No validation is
// required to go back.
func (n *Navigator) Retreat() {
	switch n.pos.Stage {
	case StageSection:
		if n.pos.Section == 0 {
			n.pos = PersonalInfo()
		} else {
			n.pos = Section(n.pos.Section - 1)
		}
		n.errors = nil
	}
}

// JumpTo moves directly to a visited position: anything at or before the
// current one. Forward jumps are a no-op and report false.
func (n *Navigator) JumpTo(pos Position) bool {
	if n.pos.Stage == StageSubmitted || n.pos.Before(pos) {
		return false
	}
	if pos.Stage == StageSection && (pos.Section < 0 || pos.Section >= len(n.form.Sections)) {
		return false
	}
	n.pos = pos
	n.errors = nil
	return true
}

// CanSubmit checks the submission guard: the current (last) section must
// validate, and every required question across the whole form must be
// answered. The full sweep defends against restored state where an earlier
// section silently became incomplete.
func (n *Navigator) CanSubmit() error {
	if n.pos.Stage != StageSection || n.pos.Section != len(n.form.Sections)-1 {
		return errors.New("submission is only allowed from the last section")
	}
	if ids := validate.SectionErrors(&n.form.Sections[n.pos.Section], n.store); len(ids) > 0 {
		n.errors = ids
		return &validate.ValidationError{
			QuestionIDs: ids,
			Message:     "please answer all required questions in this section",
		}
	}
	if ids := validate.FormErrors(n.form, n.store); len(ids) > 0 {
		n.errors = ids
		return &validate.ValidationError{
			QuestionIDs: ids,
			Message:     "please complete all required questions in previous sections before submitting",
		}
	}
	n.errors = nil
	return nil
}

// MarkSubmitted moves to the terminal position.
func (n *Navigator) MarkSubmitted() {
	n.pos = Submitted()
	n.errors = nil
}
