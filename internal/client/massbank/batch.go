package massbank

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchSize caps how many files are validated at once.
const BatchSize = 5

// Input is one file to validate. Load returns its content.
type Input struct {
	Name string
	Load func(ctx context.Context) ([]byte, error)
}

var newID = uuid.NewString

// ValidateFiles validates inputs in batches of BatchSize. Files within a
// batch run in parallel; the next batch starts when the previous one is
// done. Results keep input order. A file that cannot be loaded becomes an
// invalid result carrying one error of type "other".
func ValidateFiles(ctx context.Context, inputs []Input) []models.MassSpecFile {
	out := make([]models.MassSpecFile, len(inputs))

	for start := 0; start < len(inputs); start += BatchSize {
		end := min(start+BatchSize, len(inputs))

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				out[i] = validateOne(ctx, inputs[i])
				return nil
			})
		}
		_ = g.Wait()
	}
	return out
}

func validateOne(ctx context.Context, in Input) models.MassSpecFile {
	f := models.MassSpecFile{ID: newID(), OriginalName: in.Name}

	data, err := load(ctx, in)
	if err != nil {
		f.Errors = []models.ValidationMessage{{Message: err.Error(), Type: TypeOther}}
		return f
	}

	res := ValidateContent(string(data), in.Name)
	f.Content = string(data)
	f.IsValid = res.Success
	f.Errors = res.Errors
	f.Warnings = res.Warnings
	return f
}

func load(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Load == nil {
		return nil, errors.New("Failed to validate file")
	}
	return in.Load(ctx)
}
