package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/models"
)

// Client is the API surface the CLI services depend on.
type Client interface {
	SetToken(token string)
	Login(ctx context.Context, code string) (*LoginResult, error)
	Logout(ctx context.Context) error
	Check(ctx context.Context) (*models.UserProfile, error)
	Me(ctx context.Context) (*models.UserProfile, error)
	RefreshOrcidToken(ctx context.Context) (time.Time, error)
	SubmitEntry(ctx context.Context, p *SubmitPayload) (*models.Entry, error)
	ListEntries(ctx context.Context) ([]models.Entry, error)
	GetEntry(ctx context.Context, entryID string) (*models.Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

type LoginResult struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// SubmitPayload is everything a compound entry upload carries.
type SubmitPayload struct {
	EntryID     string
	Title       models.RichText
	Description models.RichText
	Authors     []models.Author
	Molecule    *models.Molecule
	Nmr         *models.NmrBundle
	MassSpec    []models.MassSpecFile
}
