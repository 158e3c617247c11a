// Package session composes the engine: form fetch, answer store seeding,
// snapshot restore, navigation and final submission for one respondent
// filling one form.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"formflow/internal/client"
	"formflow/internal/model"
	"formflow/internal/navigate"
	"formflow/internal/snapshot"
	"formflow/internal/store"
	"formflow/internal/validate"
	"formflow/internal/wire"
)

// Controller drives a single form session. All mutation is synchronous;
// there is no parallel access to a session.
type Controller struct {
	id        string
	formID    string
	backend   client.Backend
	snapshots *snapshot.Manager
	log       *logrus.Entry

	form       *model.Form
	store      *store.AnswerStore
	nav        *navigate.Navigator
	respondent model.Respondent

	restored  bool
	lastSaved time.Time

	// OnSaved, when set, observes successful autosaves. UI layers use it
	// to drive a saved indicator; the engine does not wait on it.
	OnSaved func(at time.Time)
}

// Start fetches the form, seeds the answer store and overlays any fresh
// snapshot. A fetch failure is fatal; a restore failure silently starts
// an empty session.
func Start(ctx context.Context, backend client.Backend, snapshots *snapshot.Manager, formID string, log *logrus.Logger) (*Controller, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	form, err := backend.FetchForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		id:        uuid.NewString(),
		formID:    formID,
		backend:   backend,
		snapshots: snapshots,
		form:      form,
		store:     store.New(),
	}
	c.log = log.WithFields(logrus.Fields{"session_id": c.id, "form_id": formID})
	c.store.Initialize(form.Questions())

	c.nav = navigate.New(form, c.store, c.backendGuard())

	c.restore(ctx)
	return c, nil
}

// backendGuard wraps any Backend's duplicate check with the fail-open
// policy: an error reads as Unknown, and Unknown allows.
func (c *Controller) backendGuard() navigate.GuardFunc {
	return func(ctx context.Context, email string) navigate.Outcome {
		has, err := c.backend.CheckSubmission(ctx, c.formID, email)
		if err != nil {
			c.log.WithError(err).Warn("duplicate check failed, allowing through")
			return navigate.Unknown
		}
		if has {
			return navigate.Deny
		}
		return navigate.Allow
	}
}

func (c *Controller) restore(ctx context.Context) {
	snap, err := c.snapshots.Load(ctx, c.formID)
	if err != nil {
		c.log.WithError(err).Warn("snapshot load failed, starting empty")
		return
	}
	if snap == nil || !snap.HasContent() {
		return
	}

	c.respondent = model.Respondent{Name: snap.Name, Email: snap.Email, Role: snap.Role}
	c.store.Restore(snap.Answers)
	c.nav.Restore(navigate.FromIndex(snap.CurrentSection, len(c.form.Sections)))
	c.restored = true
	c.log.WithField("saved_at", snap.SavedAt).Info("session restored from snapshot")
}

// Form returns the loaded definition.
func (c *Controller) Form() *model.Form { return c.form }

// Respondent returns the collected identity fields.
func (c *Controller) Respondent() model.Respondent { return c.respondent }

// Position returns the current navigational position.
func (c *Controller) Position() navigate.Position { return c.nav.Position() }

// Errors returns the outstanding validation error set.
func (c *Controller) Errors() []string { return c.nav.Errors() }

// Restored reports whether this session was resumed from a snapshot, so a
// UI can surface the dismissible notice with its start-fresh action.
func (c *Controller) Restored() bool { return c.restored }

// LastSaved returns when the session last autosaved, zero if never.
func (c *Controller) LastSaved() time.Time { return c.lastSaved }

// ClosingMessage returns the text handed to the success screen.
func (c *Controller) ClosingMessage() string { return c.form.ClosingMessage }

// StartFresh discards the snapshot and resets the session to an empty
// personal info page.
func (c *Controller) StartFresh(ctx context.Context) {
	if err := c.snapshots.Clear(ctx, c.formID); err != nil {
		c.log.WithError(err).Warn("clearing snapshot failed")
	}
	c.respondent = model.Respondent{}
	c.store.Initialize(c.form.Questions())
	c.nav.Restore(navigate.PersonalInfo())
	c.restored = false
}

// SetName records the respondent name.
func (c *Controller) SetName(ctx context.Context, name string) {
	c.respondent.Name = name
	c.persist(ctx)
}

// SetEmail records the respondent email.
func (c *Controller) SetEmail(ctx context.Context, email string) {
	c.respondent.Email = email
	c.persist(ctx)
}

// SetRole records the respondent role.
func (c *Controller) SetRole(ctx context.Context, role string) {
	c.respondent.Role = role
	c.persist(ctx)
}

// Answer applies a typed mutation to one question's answer, clears its
// validation error if it just became satisfied, and autosaves.
func (c *Controller) Answer(ctx context.Context, questionID string, set func(*store.AnswerStore) error) error {
	if err := set(c.store); err != nil {
		return err
	}
	if q := c.form.Question(questionID); q != nil && validate.Satisfied(q, c.store.Get(questionID)) {
		c.nav.ClearError(questionID)
	}
	c.persist(ctx)
	return nil
}

// SetLikert answers a likert question.
func (c *Controller) SetLikert(ctx context.Context, questionID string, value int) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetLikert(questionID, value)
	})
}

// SetText answers a text or textarea question.
func (c *Controller) SetText(ctx context.Context, questionID, value string) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetText(questionID, value)
	})
}

// SetSelection answers a single-choice question.
func (c *Controller) SetSelection(ctx context.Context, questionID, option string) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetSelection(questionID, option)
	})
}

// SetSelections answers a checkbox question.
func (c *Controller) SetSelections(ctx context.Context, questionID string, options []string) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetSelections(questionID, options)
	})
}

// SetNumber answers a number or rating question.
func (c *Controller) SetNumber(ctx context.Context, questionID string, value float64) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetNumber(questionID, value)
	})
}

// SetDateTime answers a datetime question.
func (c *Controller) SetDateTime(ctx context.Context, questionID, value string) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetDateTime(questionID, value)
	})
}

// SetComment attaches a comment to a comment-capable question.
func (c *Controller) SetComment(ctx context.Context, questionID, comment string) error {
	return c.Answer(ctx, questionID, func(s *store.AnswerStore) error {
		return s.SetComment(questionID, comment)
	})
}

// NextSection advances past the current position, running its guards.
func (c *Controller) NextSection(ctx context.Context) error {
	err := c.nav.Advance(ctx, c.respondent)
	if err != nil {
		return err
	}
	c.persist(ctx)
	return nil
}

// PreviousSection moves back one position.
func (c *Controller) PreviousSection(ctx context.Context) {
	c.nav.Retreat()
	c.persist(ctx)
}

// JumpTo moves directly to an already-visited position.
func (c *Controller) JumpTo(ctx context.Context, pos navigate.Position) bool {
	if !c.nav.JumpTo(pos) {
		return false
	}
	c.persist(ctx)
	return true
}

// SectionComplete reports completion of one section, for position
// indicators.
func (c *Controller) SectionComplete(i int) bool {
	if i < 0 || i >= len(c.form.Sections) {
		return false
	}
	return validate.SectionComplete(&c.form.Sections[i], c.store)
}

// Submit validates, serializes and posts the submission. On success the
// snapshot is cleared and the session reaches its terminal position; on
// failure the session is untouched so the respondent can retry.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.nav.CanSubmit(); err != nil {
		return err
	}

	req := model.SubmissionRequest{
		RespondentName:  c.respondent.Name,
		RespondentEmail: c.respondent.Email,
		Role:            c.respondent.Role,
		Answers:         wire.Serialize(c.form, c.store),
	}
	if err := c.backend.Submit(ctx, c.formID, req); err != nil {
		return err
	}

	if err := c.snapshots.Clear(ctx, c.formID); err != nil {
		c.log.WithError(err).Warn("clearing snapshot after submit failed")
	}
	c.nav.MarkSubmitted()
	c.log.WithField("answers", len(req.Answers)).Info("submission accepted")
	return nil
}

// persist autosaves the session once it holds respondent-entered data.
// Saves are synchronous and idempotent; failures are logged and never
// surface to the respondent.
func (c *Controller) persist(ctx context.Context) {
	if !c.hasData() {
		return
	}
	snap := snapshot.Snapshot{
		Name:           c.respondent.Name,
		Email:          c.respondent.Email,
		Role:           c.respondent.Role,
		CurrentSection: c.nav.Position().Index(),
		Answers:        c.store.Entries(),
	}
	if err := c.snapshots.Save(ctx, c.formID, snap); err != nil {
		c.log.WithError(err).Warn("autosave failed")
		return
	}
	c.lastSaved = time.Now()
	if c.OnSaved != nil {
		c.OnSaved(c.lastSaved)
	}
}

func (c *Controller) hasData() bool {
	r := c.respondent
	return r.Name != "" || r.Email != "" || r.Role != "" || c.store.HasRespondentData()
}
