package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/drafts"
	"github.com/dmitrijs2005/nobs/internal/client/form"
	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/logging"
)

const (
	submitFallback     = "Failed to submit entry"
	unauthorizedReason = "Unauthorized access"
	alreadySubmitting  = "Submission already in progress"
	notStarted         = "No entry in progress"
)

// SubmitOutcome reports what a submit attempt did.
type SubmitOutcome struct {
	// Entry is the created entry on success.
	Entry *models.Entry
	// Section is the first invalid form section when nothing was sent.
	Section form.Section
	// Message is the user-facing reason of a failed request.
	Message string
}

func (o SubmitOutcome) Submitted() bool { return o.Entry != nil }

type SubmitService struct {
	client client.Client
	store  *form.Store
	drafts *drafts.Repository
	auth   AuthService
	logger logging.Logger
}

func NewSubmitService(c client.Client, store *form.Store, d *drafts.Repository, auth AuthService, l logging.Logger) *SubmitService {
	return &SubmitService{client: c, store: store, drafts: d, auth: auth, logger: l.With("module", "submit")}
}

// Submit sends the form. An invalid form is reported by section without any
// request. On success the draft is cleared and the form starts over for the
// current user; on failure the form is left as it was. The submitting flag
// is always cleared before returning.
func (s *SubmitService) Submit(ctx context.Context) (SubmitOutcome, error) {
	s.store.SetAttemptedSubmit(true)

	snap := s.store.Snapshot()
	if snap.Submitting {
		return SubmitOutcome{Message: alreadySubmitting}, nil
	}
	d := form.Derive(snap)
	if !d.IsValid {
		section := form.FirstInvalidSection(d)
		if section == form.SectionNone {
			return SubmitOutcome{Section: section, Message: notStarted}, nil
		}
		return SubmitOutcome{Section: section}, nil
	}

	s.store.SetSubmitting(true)
	defer s.store.SetSubmitting(false)

	entry, err := s.client.SubmitEntry(ctx, payloadFrom(snap))
	if err != nil {
		s.logger.Warn(ctx, "submit failed", "entry_id", snap.EntryID, "error", err)
		return SubmitOutcome{Message: failureMessage(err)}, fmt.Errorf("submit entry: %w", err)
	}

	s.logger.Info(ctx, "entry submitted", "entry_id", entry.EntryID)
	if err := s.drafts.Clear(ctx); err != nil {
		s.logger.Warn(ctx, "draft clear failed", "error", err)
	}

	// no cached profile means an empty author list
	user, _ := s.auth.CurrentUser(ctx)
	s.store.Initialize(user)
	return SubmitOutcome{Entry: entry}, nil
}

func payloadFrom(snap form.Snapshot) *client.SubmitPayload {
	p := &client.SubmitPayload{
		EntryID:     snap.EntryID,
		Title:       snap.Title,
		Description: snap.Description,
		Authors:     snap.Authors,
		Molecule:    snap.Molecule,
		Nmr:         snap.Nmr,
	}
	if snap.MassSpec != nil {
		p.MassSpec = snap.MassSpec.Files
	}
	return p
}

func failureMessage(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.Is(err, client.ErrUnauthorized):
		return unauthorizedReason
	}
	return submitFallback
}
