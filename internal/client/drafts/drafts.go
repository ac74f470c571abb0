// Package drafts persists the in-progress entry form to the local metadata
// store and autosaves it while the user edits.
package drafts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/dmitrijs2005/nobs/internal/client/repositories/metadata"
)

// Key is the metadata key the single draft lives under.
const Key = "nobs_entry_draft"

var nowFn = func() time.Time { return time.Now().UTC() }

type Repository struct {
	meta metadata.Repository
}

func NewRepository(meta metadata.Repository) *Repository {
	return &Repository{meta: meta}
}

// Save replaces the stored draft. SavedAt is stamped here.
func (r *Repository) Save(ctx context.Context, d models.Draft) error {
	d.SavedAt = nowFn()
	return metadata.SetJSON(ctx, r.meta, Key, d)
}

// Load returns the stored draft, or nil when there is none.
func (r *Repository) Load(ctx context.Context) (*models.Draft, error) {
	var d models.Draft
	found, err := metadata.GetJSON(ctx, r.meta, Key, &d)
	if err != nil || !found {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.meta.Delete(ctx, Key)
}

func (r *Repository) Exists(ctx context.Context) (bool, error) {
	return r.meta.Exists(ctx, Key)
}
