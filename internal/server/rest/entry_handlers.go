package rest

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/nobs/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const (
	nmrArchiveField     = "nmrArchive"
	massSpecFieldPrefix = "massSpecFile_"
)

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)

	list, err := s.entries.List(ctx, p.User.ID)
	if err != nil {
		s.fail(ctx, w, err, "Failed to list entries")
		return
	}

	out := make([]entryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEntry(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := services.CreateEntryInput{
		EntryID:     r.PostForm.Get("entryId"),
		Title:       r.PostForm.Get("title"),
		Description: optionalField(r, "description"),
		Authors:     r.PostForm.Get("authors"),
		Molecule:    optionalField(r, "molecule"),
	}

	if fh := formFile(r, nmrArchiveField); fh != nil {
		u := toUpload(fh)
		in.NmrArchive = &u
	}
	for i := 0; ; i++ {
		fh := formFile(r, fmt.Sprintf("%s%d", massSpecFieldPrefix, i))
		if fh == nil {
			break
		}
		in.MassbankFiles = append(in.MassbankFiles, toUpload(fh))
	}

	entry, err := s.entries.Create(ctx, p.User.ID, in)
	if err != nil {
		s.fail(ctx, w, err, "Failed to create entry")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"entry": toEntry(entry)})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)

	entry, err := s.entries.Get(ctx, p.User.ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(ctx, w, err, "Failed to load entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": toEntry(entry)})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := principalFrom(ctx)

	if err := s.entries.Delete(ctx, p.User.ID, chi.URLParam(r, "id")); err != nil {
		s.fail(ctx, w, err, "Failed to delete entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Entry deleted"})
}

// optionalField is nil when the form has no such key, so an absent
// description differs from an empty one.
func optionalField(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}

func formFile(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	fhs := r.MultipartForm.File[key]
	if len(fhs) == 0 {
		return nil
	}
	return fhs[0]
}

func toUpload(fh *multipart.FileHeader) services.Upload {
	return services.Upload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}
