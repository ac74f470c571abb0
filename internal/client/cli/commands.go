package cli

import (
	"errors"
	"os"
)

// readFile is a test seam for reading user-supplied paths.
var readFile = os.ReadFile

var errNoEntry = errors.New("no entry in progress, type 'new' to start one")

func (a *App) commands() map[string]command {
	return map[string]command{
		"login":       {usage: "login [code]                  sign in with an ORCID authorization code", run: a.login},
		"logout":      {usage: "logout                        sign out", needsLogin: true, run: a.logout},
		"whoami":      {usage: "whoami                        show the signed-in researcher", run: a.whoami},
		"check":       {usage: "check                         re-validate the session with the server", run: a.check},
		"refresh":     {usage: "refresh                       refresh the stored ORCID token", needsLogin: true, run: a.refreshOrcid},
		"new":         {usage: "new                           start a new entry", run: a.newEntry},
		"title":       {usage: "title [text]                  set the title", run: a.title},
		"description": {usage: "description                   set the description (multi-line)", run: a.description},
		"author":      {usage: "author add|edit|rm|up|down|list [n]  manage authors", run: a.author},
		"smiles":      {usage: "smiles <SMILES>|clear         set the structure from SMILES", run: a.smiles},
		"molfile":     {usage: "molfile <path>                set the structure from a molfile", run: a.molfile},
		"nmr":         {usage: "nmr <path>|clear              attach an .nmrium.zip archive", run: a.nmr},
		"massbank":    {usage: "massbank <paths...>|rm <id>|clear|list  attach MassBank records", run: a.massbank},
		"status":      {usage: "status                        show the entry and what is missing", run: a.status},
		"draft":       {usage: "draft save|restore|clear      manage the saved draft", run: a.draft},
		"submit":      {usage: "submit                        submit the entry", needsLogin: true, run: a.submit},
		"list":        {usage: "list                          list your submitted entries", needsLogin: true, run: a.list},
		"show":        {usage: "show <id>                     show a submitted entry", needsLogin: true, run: a.show},
		"delete":      {usage: "delete <id>                   delete a submitted entry", needsLogin: true, run: a.delete},
	}
}

// requireEntry fails when no form has been started.
func (a *App) requireEntry() error {
	if a.store.Snapshot().EntryID == "" {
		return errNoEntry
	}
	return nil
}
