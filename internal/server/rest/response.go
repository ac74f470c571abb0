package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/server/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID          int64   `json:"id"`
	Orcid       string  `json:"orcid"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Institution *string `json:"institution"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

type entryResponse struct {
	ID             int64               `json:"id"`
	EntryID        string              `json:"entryId"`
	UserID         int64               `json:"userId"`
	Title          string              `json:"title"`
	Description    *string             `json:"description"`
	Authors        []models.Author     `json:"authors"`
	Molecule       *models.Molecule    `json:"molecule"`
	NmrArchivePath *string             `json:"nmrArchivePath"`
	MassbankFiles  []models.StoredFile `json:"massbankFiles"`
	Status         string              `json:"status"`
	CreatedAt      string              `json:"createdAt"`
	UpdatedAt      string              `json:"updatedAt"`
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// toUser never exposes the stored ORCID tokens.
func toUser(u *models.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Orcid:       u.Orcid,
		Name:        u.Name,
		Email:       u.Email,
		Institution: u.Institution,
		CreatedAt:   isoTime(u.CreatedAt),
		UpdatedAt:   isoTime(u.UpdatedAt),
	}
}

func toEntry(e *models.Entry) entryResponse {
	authors := e.Authors
	if authors == nil {
		authors = []models.Author{}
	}
	files := e.MassbankFiles
	if files == nil {
		files = []models.StoredFile{}
	}
	return entryResponse{
		ID:             e.ID,
		EntryID:        e.EntryID,
		UserID:         e.UserID,
		Title:          e.Title,
		Description:    e.Description,
		Authors:        authors,
		Molecule:       e.Molecule,
		NmrArchivePath: e.NmrArchivePath,
		MassbankFiles:  files,
		Status:         e.Status,
		CreatedAt:      isoTime(e.CreatedAt),
		UpdatedAt:      isoTime(e.UpdatedAt),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps err onto a status and a caller-safe message. Unexpected errors
// become 500 with fallback; in development mode the error text is appended.
func (s *Server) fail(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	var (
		ve *common.ValidationError
		ue *common.UpstreamError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.As(err, &ue):
		writeError(w, http.StatusBadRequest, ue.Message)
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenRevoked):
		writeError(w, http.StatusUnauthorized, "Unauthorized access")
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "Entry not found")
	case errors.Is(err, common.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "Entry with this ID already exists")
	default:
		s.logger.Error(ctx, fallback, "error", err)
		msg := fallback
		if s.development {
			msg = fallback + ": " + err.Error()
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}
