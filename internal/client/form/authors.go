package form

import "github.com/dmitrijs2005/nobs/internal/client/models"

// AddAuthor appends a with a fresh id and Order equal to the current length,
// and returns the stored author.
func (s *Store) AddAuthor(a models.Author) models.Author {
	a = cloneAuthor(a)
	a.ID = s.newID()
	if a.Affiliations == nil {
		a.Affiliations = []models.Affiliation{}
	}
	for i := range a.Affiliations {
		if a.Affiliations[i].ID == "" {
			a.Affiliations[i].ID = s.newID()
		}
	}
	s.update(func(st *Snapshot) []Field {
		a.Order = len(st.Authors)
		st.Authors = append(st.Authors, a)
		st.Dirty = true
		return []Field{FieldAuthors, FieldDirty}
	})
	return cloneAuthor(a)
}

// UpdateAuthor applies patch to the author with the given id. The id and
// order cannot be changed through a patch. It reports whether the author
// was found; the form is marked dirty either way.
func (s *Store) UpdateAuthor(id string, patch func(*models.Author)) bool {
	found := false
	s.update(func(st *Snapshot) []Field {
		for i := range st.Authors {
			if st.Authors[i].ID != id {
				continue
			}
			a := cloneAuthor(st.Authors[i])
			patch(&a)
			a.ID, a.Order = st.Authors[i].ID, st.Authors[i].Order
			st.Authors[i] = a
			found = true
			break
		}
		st.Dirty = true
		return []Field{FieldAuthors, FieldDirty}
	})
	return found
}

// RemoveAuthor drops the author with the given id and renumbers the rest.
func (s *Store) RemoveAuthor(id string) {
	s.update(func(st *Snapshot) []Field {
		kept := make([]models.Author, 0, len(st.Authors))
		for _, a := range st.Authors {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		renumber(kept)
		st.Authors = kept
		st.Dirty = true
		return []Field{FieldAuthors, FieldDirty}
	})
}

// MoveAuthorUp swaps the author at index with the previous one. Index 0 and
// out-of-range indexes are ignored.
func (s *Store) MoveAuthorUp(index int) {
	s.update(func(st *Snapshot) []Field {
		if index <= 0 || index >= len(st.Authors) {
			return nil
		}
		st.Authors[index-1], st.Authors[index] = st.Authors[index], st.Authors[index-1]
		renumber(st.Authors)
		st.Dirty = true
		return []Field{FieldAuthors, FieldDirty}
	})
}

// MoveAuthorDown swaps the author at index with the next one. The last index
// and out-of-range indexes are ignored.
func (s *Store) MoveAuthorDown(index int) {
	s.update(func(st *Snapshot) []Field {
		if index < 0 || index >= len(st.Authors)-1 {
			return nil
		}
		st.Authors[index], st.Authors[index+1] = st.Authors[index+1], st.Authors[index]
		renumber(st.Authors)
		st.Dirty = true
		return []Field{FieldAuthors, FieldDirty}
	})
}

func renumber(authors []models.Author) {
	for i := range authors {
		authors[i].Order = i
	}
}
