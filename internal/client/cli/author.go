package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/nobs/internal/client/models"
	"github.com/google/uuid"
)

const authorUsage = "usage: author add|edit <n>|rm <n>|up <n>|down <n>|list"

var errAuthorName = errors.New("first and last name are required")

func (a *App) author(ctx context.Context, args []string) error {
	if err := a.requireEntry(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New(authorUsage)
	}

	switch args[0] {
	case "list":
		a.printAuthors()
		return nil
	case "add":
		return a.addAuthor()
	}

	if len(args) != 2 {
		return errors.New(authorUsage)
	}
	idx, err := a.authorIndex(args[1])
	if err != nil {
		return err
	}

	switch args[0] {
	case "edit":
		return a.editAuthor(idx)
	case "rm":
		a.store.RemoveAuthor(a.store.Snapshot().Authors[idx].ID)
	case "up":
		a.store.MoveAuthorUp(idx)
	case "down":
		a.store.MoveAuthorDown(idx)
	default:
		return errors.New(authorUsage)
	}
	a.printAuthors()
	return nil
}

// authorIndex parses a 1-based author number into a list index.
func (a *App) authorIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	count := len(a.store.Snapshot().Authors)
	if err != nil || n < 1 || n > count {
		return 0, fmt.Errorf("author number must be between 1 and %d", count)
	}
	return n - 1, nil
}

func (a *App) printAuthors() {
	authors := a.store.Snapshot().Authors
	if len(authors) == 0 {
		fmt.Fprintln(a.out, "No authors")
		return
	}
	for i, au := range authors {
		line := fmt.Sprintf("%d. %s", i+1, au.FullName())
		if au.IsCurrentUser {
			line += " (you)"
		}
		if au.Orcid != nil {
			line += " ORCID " + *au.Orcid
		}
		if len(au.Affiliations) > 0 {
			names := make([]string, 0, len(au.Affiliations))
			for _, af := range au.Affiliations {
				names = append(names, af.Name)
			}
			line += " [" + strings.Join(names, "; ") + "]"
		}
		fmt.Fprintln(a.out, line)
	}
}

func (a *App) addAuthor() error {
	au, err := a.promptAuthor(models.Author{})
	if err != nil {
		return err
	}
	a.store.AddAuthor(au)
	a.printAuthors()
	return nil
}

func (a *App) editAuthor(idx int) error {
	current := a.store.Snapshot().Authors[idx]
	au, err := a.promptAuthor(current)
	if err != nil {
		return err
	}
	a.store.UpdateAuthor(current.ID, func(x *models.Author) {
		x.FirstName = au.FirstName
		x.LastName = au.LastName
		x.Orcid = au.Orcid
		x.Affiliations = au.Affiliations
	})
	a.printAuthors()
	return nil
}

// promptAuthor asks for every author field, offering the values of current
// as defaults. Affiliations are re-entered one per line; an empty list keeps
// the current ones.
func (a *App) promptAuthor(current models.Author) (models.Author, error) {
	out := current

	first, err := GetTextWithDefault(a.in, "First name", current.FirstName, a.out)
	if err != nil {
		return out, err
	}
	last, err := GetTextWithDefault(a.in, "Last name", current.LastName, a.out)
	if err != nil {
		return out, err
	}
	out.FirstName, out.LastName = strings.TrimSpace(first), strings.TrimSpace(last)
	if out.FirstName == "" || out.LastName == "" {
		return out, errAuthorName
	}

	var orcidDefault string
	if current.Orcid != nil {
		orcidDefault = *current.Orcid
	}
	orcid, err := GetTextWithDefault(a.in, "ORCID iD (optional)", orcidDefault, a.out)
	if err != nil {
		return out, err
	}
	out.Orcid = nil
	if orcid = strings.TrimSpace(orcid); orcid != "" {
		out.Orcid = &orcid
	}

	lines, err := GetLines(a.in, "Affiliations, one per line", a.out)
	if err != nil {
		return out, err
	}
	if len(lines) > 0 {
		out.Affiliations = make([]models.Affiliation, 0, len(lines))
		for _, l := range lines {
			if l = strings.TrimSpace(l); l != "" {
				out.Affiliations = append(out.Affiliations, models.Affiliation{ID: uuid.NewString(), Name: l})
			}
		}
	}
	return out, nil
}
