package services

import (
	"context"

	"github.com/dmitrijs2005/nobs/internal/client/client"
	"github.com/dmitrijs2005/nobs/internal/client/models"
)

type EntryService interface {
	List(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, entryID string) (*models.Entry, error)
	Delete(ctx context.Context, entryID string) error
}

type entryService struct {
	client client.Client
}

func NewEntryService(c client.Client) EntryService {
	return &entryService{client: c}
}

func (s *entryService) List(ctx context.Context) ([]models.Entry, error) {
	return s.client.ListEntries(ctx)
}

func (s *entryService) Get(ctx context.Context, entryID string) (*models.Entry, error) {
	return s.client.GetEntry(ctx, entryID)
}

func (s *entryService) Delete(ctx context.Context, entryID string) error {
	return s.client.DeleteEntry(ctx, entryID)
}
