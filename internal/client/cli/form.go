package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/chem"
	"github.com/dmitrijs2005/nobs/internal/client/form"
)

// sectionHints are shown after a rejected submit, keyed by the section that
// failed first.
var sectionHints = map[form.Section]string{
	form.SectionTitle:    "Title is required",
	form.SectionAuthors:  "At least one author is required",
	form.SectionMolecule: "A molecular structure with valid SMILES is required",
	form.SectionMassbank: "Please fix validation errors in MassBank files",
	form.SectionSpectra:  "Upload NMR or MassBank data, at least one is required",
}

// newEntry starts a fresh form for the current user. A saved draft is
// offered for restore first; declining discards it.
func (a *App) newEntry(ctx context.Context, _ []string) error {
	d, err := a.drafts.Load(ctx)
	if err != nil {
		a.logger.Warn(ctx, "draft load failed", "error", err)
	}

	a.store.Initialize(a.currentUser())

	if d != nil {
		q := fmt.Sprintf("A draft saved %s exists. Restore it?", d.SavedAt.Local().Format("2006-01-02 15:04"))
		if Confirm(a.in, q, a.out) {
			a.store.RestoreDraft(*d)
			fmt.Fprintf(a.out, "Draft restored (entry %s)\n", d.EntryID)
			return nil
		}
		if err := a.drafts.Clear(ctx); err != nil {
			return err
		}
	}

	fmt.Fprintf(a.out, "Started entry %s\n", a.store.Snapshot().EntryID)
	return nil
}

func (a *App) title(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		text, err = GetSimpleText(a.in, "Title", a.out)
		if err != nil {
			return err
		}
	}
	a.store.SetTitle(form.RichTextFromPlain(text))
	return nil
}

func (a *App) description(ctx context.Context, _ []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	text, err := GetMultiline(a.in, "Description", a.out)
	if err != nil {
		return err
	}
	a.store.SetDescription(form.RichTextFromPlain(text))
	return nil
}

func (a *App) smiles(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: smiles <SMILES>|clear")
	}
	if args[0] == "clear" {
		a.store.SetMolecule(nil)
		return nil
	}

	m, err := chem.MoleculeFromSmiles(args[0])
	if err != nil {
		return fmt.Errorf("invalid SMILES: %w", err)
	}
	a.store.SetMolecule(m)
	fmt.Fprintf(a.out, "%s  MW %.4f  monoisotopic %.6f\n", m.MolecularFormula, m.MolecularWeight, m.MonoisotopicMass)
	return nil
}

func (a *App) molfile(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: molfile <path>")
	}
	data, err := readFile(args[0])
	if err != nil {
		return err
	}

	m, err := chem.MoleculeFromMolfile(string(data))
	if err != nil {
		return fmt.Errorf("invalid molfile: %w", err)
	}
	a.store.SetMolecule(m)
	fmt.Fprintf(a.out, "%s  %s  MW %.4f\n", m.Smiles, m.MolecularFormula, m.MolecularWeight)
	return nil
}

func (a *App) draft(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: draft save|restore|clear")
	}

	switch args[0] {
	case "save":
		if err := a.requireEntry(); err != nil {
			return err
		}
		if err := a.autosaver.Flush(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Draft saved")

	case "restore":
		d, err := a.drafts.Load(ctx)
		if err != nil {
			return err
		}
		if d == nil {
			fmt.Fprintln(a.out, "No saved draft")
			return nil
		}
		a.store.RestoreDraft(*d)
		fmt.Fprintf(a.out, "Draft restored (entry %s)\n", d.EntryID)

	case "clear":
		if err := a.drafts.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Draft cleared")

	default:
		return errors.New("usage: draft save|restore|clear")
	}
	return nil
}

func (a *App) submit(ctx context.Context, _ []string) error {
	out, err := a.submitter.Submit(ctx)
	if err != nil {
		a.logger.Debug(ctx, "submit error", "error", err)
	}

	switch {
	case out.Submitted():
		fmt.Fprintf(a.out, "Entry %s submitted\n", out.Entry.EntryID)
		fmt.Fprintf(a.out, "Started entry %s\n", a.store.Snapshot().EntryID)
	case out.Message != "":
		fmt.Fprintln(a.out, out.Message)
	default:
		fmt.Fprintln(a.out, "Complete all required fields to submit")
		if hint, ok := sectionHints[out.Section]; ok {
			fmt.Fprintf(a.out, "  %s\n", hint)
		}
	}
	return nil
}
