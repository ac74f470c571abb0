// Package cli provides the interactive nobs command-line client.
//
// It wires configuration, the local SQLite store, the API services and the
// entry form into a REPL. Typical flow: sign in with an ORCID authorization
// code, start an entry with `new`, fill in title, authors, structure and
// spectra, check `status`, then `submit`.
//
// Key features:
//   - ORCID login / logout, with the session restored on start
//   - Entry form editing with debounced draft autosave
//   - MassBank validation and NMR archive attachment
//   - List / Show / Delete of submitted entries
//
// A background watcher re-validates the session; an unreachable server only
// switches the client to offline mode. The REPL is started via App.Run(ctx),
// which blocks until the user exits. See App, StartStatusWatcher and runREPL
// for details.
package cli
