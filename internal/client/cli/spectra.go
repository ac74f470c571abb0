package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/nobs/internal/client/massbank"
	"github.com/dmitrijs2005/nobs/internal/client/nmr"
	"github.com/dmitrijs2005/nobs/internal/filex"
)

const massbankUsage = "usage: massbank <paths...>|rm <id or n>|clear|list"

func (a *App) nmr(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: nmr <path>|clear")
	}
	if args[0] == "clear" {
		a.store.SetNmr(nil)
		return nil
	}

	name := filepath.Base(args[0])
	data, err := readFile(args[0])
	if err != nil {
		return err
	}
	b, err := nmr.ProcessArchive(name, data)
	if err != nil {
		return err
	}
	a.store.SetNmr(b)
	fmt.Fprintf(a.out, "NMR archive %s attached\n", b.FileName)
	return nil
}

func (a *App) massbank(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New(massbankUsage)
	}

	switch args[0] {
	case "list":
		a.printMassbank()
		return nil
	case "clear":
		a.store.ClearMassSpec()
		return nil
	case "rm":
		if len(args) != 2 {
			return errors.New(massbankUsage)
		}
		return a.removeMassbank(args[1])
	}

	var inputs []massbank.Input
	for _, path := range args {
		path := path
		name := filepath.Base(path)
		if !massbank.AcceptedName(name) {
			fmt.Fprintf(a.out, "%s: Please drop MassBank files (.txt or .mb)\n", name)
			continue
		}
		inputs = append(inputs, massbank.Input{
			Name: name,
			Load: func(context.Context) ([]byte, error) { return readFile(path) },
		})
	}
	if len(inputs) == 0 {
		return nil
	}

	files := massbank.ValidateFiles(ctx, inputs)
	a.store.AddMassSpecFiles(files...)

	for _, f := range files {
		if f.IsValid {
			fmt.Fprintf(a.out, "ok    %s (%d warnings)\n", f.OriginalName, len(f.Warnings))
		} else {
			fmt.Fprintf(a.out, "error %s\n", f.OriginalName)
			for _, e := range f.Errors {
				if e.Line > 0 {
					fmt.Fprintf(a.out, "      line %d: %s\n", e.Line, e.Message)
				} else {
					fmt.Fprintf(a.out, "      %s\n", e.Message)
				}
			}
		}
		if !uploadableMassbankName(f.OriginalName) {
			fmt.Fprintf(a.out, "      note: the server only accepts .txt MassBank files, rename %s before submitting\n", f.OriginalName)
		}
	}
	return nil
}

// uploadableMassbankName reports whether the server will take the file on
// submit. Records saved as .mb validate locally but are refused there.
func uploadableMassbankName(name string) bool {
	return filex.Ext(name) == "txt"
}

// removeMassbank accepts a file id or its 1-based position in the list.
func (a *App) removeMassbank(ref string) error {
	id := ref
	if n, err := strconv.Atoi(ref); err == nil {
		snap := a.store.Snapshot()
		if n < 1 || n > snap.MassSpec.Len() {
			return fmt.Errorf("no MassBank file number %d", n)
		}
		id = snap.MassSpec.Files[n-1].ID
	}
	if !a.store.RemoveMassSpecFile(id) {
		return fmt.Errorf("no MassBank file %s", ref)
	}
	a.printMassbank()
	return nil
}

func (a *App) printMassbank() {
	b := a.store.Snapshot().MassSpec
	if b.Len() == 0 {
		fmt.Fprintln(a.out, "No MassBank files")
		return
	}
	for i, f := range b.Files {
		state := "valid"
		if !f.IsValid {
			state = fmt.Sprintf("%d errors", len(f.Errors))
		}
		fmt.Fprintf(a.out, "%d. %s  %s  %s\n", i+1, f.OriginalName, state, f.ID)
	}
}
