package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/nobs/internal/client/form"
)

func mark(ok bool) string {
	if ok {
		return "[x]"
	}
	return "[ ]"
}

// status prints the form with a checklist of what submit still needs.
func (a *App) status(ctx context.Context, _ []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	snap := a.store.Snapshot()
	d := form.Derive(snap)

	fmt.Fprintf(a.out, "Entry %s", snap.EntryID)
	if snap.Dirty {
		fmt.Fprint(a.out, " (unsaved changes)")
	}
	fmt.Fprintln(a.out)

	fmt.Fprintf(a.out, "%s Title: %s\n", mark(d.HasTitle), form.PlainText(snap.Title))
	fmt.Fprintf(a.out, "%s Authors: %d\n", mark(d.AuthorCount > 0), d.AuthorCount)

	mol := "none"
	if snap.Molecule != nil {
		mol = fmt.Sprintf("%s (%s)", snap.Molecule.Smiles, snap.Molecule.MolecularFormula)
	}
	fmt.Fprintf(a.out, "%s Structure: %s\n", mark(d.HasSmiles), mol)

	nmrName := "none"
	if d.HasNmrData {
		nmrName = snap.Nmr.FileName
	}
	fmt.Fprintf(a.out, "%s NMR: %s\n", mark(d.HasNmrData), nmrName)

	invalid := 0
	if snap.MassSpec != nil {
		for _, f := range snap.MassSpec.Files {
			if !f.IsValid {
				invalid++
			}
		}
	}
	fmt.Fprintf(a.out, "%s MassBank: %d files, %d invalid\n", mark(snap.MassSpec.Len() > 0 && !d.HasMassSpecErrors), snap.MassSpec.Len(), invalid)

	if d.IsValid {
		fmt.Fprintln(a.out, "Ready to submit")
		return nil
	}
	fmt.Fprintln(a.out, "Complete all required fields to submit")
	if hint, ok := sectionHints[form.FirstInvalidSection(d)]; ok {
		fmt.Fprintf(a.out, "  %s\n", hint)
	}
	return nil
}
