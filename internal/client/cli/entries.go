package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/nobs/internal/client/form"
	"github.com/dmitrijs2005/nobs/internal/client/models"
)

// entryTitle renders a stored title. Titles are editor JSON; anything else
// is shown as is.
func entryTitle(raw string) string {
	if t := form.PlainText(models.RichText(raw)); t != "" {
		return strings.ReplaceAll(t, "\n", " ")
	}
	return raw
}

func (a *App) list(ctx context.Context, _ []string) error {
	entries, err := a.entries.List(ctx)
	if err != nil {
		return describeRequestError(err, "Failed to fetch entries")
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENTRY ID\tTITLE\tSTATUS\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.EntryID, entryTitle(e.Title), e.Status, e.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	e, err := a.entries.Get(ctx, args[0])
	if err != nil {
		return describeRequestError(err, "Failed to fetch entry")
	}

	fmt.Fprintf(a.out, "Entry %s (%s)\n", e.EntryID, e.Status)
	fmt.Fprintf(a.out, "Title: %s\n", entryTitle(e.Title))
	if e.Description != nil {
		if d := form.PlainText(models.RichText(*e.Description)); d != "" {
			fmt.Fprintf(a.out, "Description:\n  %s\n", strings.ReplaceAll(d, "\n", "\n  "))
		}
	}
	fmt.Fprintln(a.out, "Authors:")
	for i, au := range e.Authors {
		fmt.Fprintf(a.out, "  %d. %s\n", i+1, au.FullName())
	}
	if e.Molecule != nil {
		fmt.Fprintf(a.out, "Structure: %s (%s, MW %.4f)\n", e.Molecule.Smiles, e.Molecule.MolecularFormula, e.Molecule.MolecularWeight)
	}
	if e.NmrArchivePath != nil {
		fmt.Fprintf(a.out, "NMR archive: %s\n", *e.NmrArchivePath)
	}
	for _, f := range e.MassbankFiles {
		fmt.Fprintf(a.out, "MassBank: %s\n", f.Filename)
	}
	fmt.Fprintf(a.out, "Created: %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	if !Confirm(a.in, fmt.Sprintf("Delete entry %s and its files?", args[0]), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.entries.Delete(ctx, args[0]); err != nil {
		return describeRequestError(err, "Failed to delete entry")
	}
	fmt.Fprintf(a.out, "Entry %s deleted\n", args[0])
	return nil
}
