package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/nobs/internal/common"
	"github.com/dmitrijs2005/nobs/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumns = []string{"id", "entry_id", "user_id", "title", "description", "authors", "molecule", "nmr_archive_path", "massbank_files", "status", "created_at", "updated_at"}

const (
	qInsert = `(?s)^\s*INSERT\s+INTO\s+entries\s*\(entry_id,\s*user_id,\s*title,\s*description,\s*authors,\s*molecule,\s*nmr_archive_path,\s*massbank_files,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7,\s*\$8,\s*\$9\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`
	qExists = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+entries\s+WHERE\s+entry_id\s*=\s*\$1\)$`
	qList   = `(?s)^SELECT\s+id,\s*entry_id,.*FROM\s+entries\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC$`
	qGet    = `(?s)^SELECT\s+id,\s*entry_id,.*FROM\s+entries\s+WHERE\s+entry_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	qDelete = `(?s)^DELETE\s+FROM\s+entries\s+WHERE\s+entry_id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
)

const entryID = "3f2b8c0e-5d1a-4c7e-9b6f-0a1d2e3f4a5b"

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func sampleEntry() *models.Entry {
	smiles := "CCO"
	return &models.Entry{
		EntryID: entryID,
		UserID:  7,
		Title:   `"{\"root\":{}}"`,
		Authors: []models.Author{{ID: "a1", FirstName: "Josiah", LastName: "Carberry", Affiliations: []models.Affiliation{}, IsCurrentUser: true}},
		Molecule: &models.Molecule{
			Smiles:           &smiles,
			MolecularFormula: "C2H6O",
		},
		NmrArchivePath: common.StringPtr("data/3f/" + entryID + "/nmr/sample.zip"),
		MassbankFiles:  []models.StoredFile{{Filename: "MSBNK-1.txt", Path: "data/3f/" + entryID + "/massbank/MSBNK-1.txt"}},
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	e := sampleEntry()

	mock.ExpectQuery(qInsert).
		WithArgs(entryID, int64(7), e.Title, nil,
			`[{"id":"a1","firstName":"Josiah","lastName":"Carberry","affiliations":[],"orcid":null,"isCurrentUser":true,"order":0}]`,
			`{"molfileV3":"","idCode":"","smiles":"CCO","molecularFormula":"C2H6O","molecularWeight":0,"monoisotopicMass":0}`,
			*e.NmrArchivePath,
			`[{"filename":"MSBNK-1.txt","path":"data/3f/`+entryID+`/massbank/MSBNK-1.txt"}]`,
			models.StatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	got, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, models.StatusSubmitted, got.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NullableColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	e := &models.Entry{EntryID: entryID, UserID: 1, Title: "t"}

	mock.ExpectQuery(qInsert).
		WithArgs(entryID, int64(1), "t", nil, "[]", nil, nil, nil, models.StatusSubmitted).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	_, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "entries_entry_id_key"})

	_, err := repo.Create(context.Background(), sampleEntry())
	assert.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), sampleEntry())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestExistsByEntryID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qExists).WithArgs(entryID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.ExistsByEntryID(context.Background(), entryID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestListByUser_DecodesColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	newer := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(entryColumns).
		AddRow(int64(2), "bb000000-0000-4000-8000-000000000002", int64(7), "t2", "d2",
			[]byte(`[{"id":"a","firstName":"Jane","lastName":"Doe","affiliations":[{"id":"f","name":"MIT"}],"orcid":null,"isCurrentUser":false,"order":0}]`),
			[]byte(`{"molfileV3":"M","idCode":"x","smiles":"CCO","molecularFormula":"C2H6O","molecularWeight":46.07,"monoisotopicMass":46.04}`),
			nil, []byte(`[{"filename":"a.txt","path":"p/a.txt"}]`), "submitted", newer, newer).
		AddRow(int64(1), "aa000000-0000-4000-8000-000000000001", int64(7), "t1", nil,
			[]byte(`[]`), nil, "data/aa/x/nmr/s.zip", nil, "submitted", older, older)

	mock.ExpectQuery(qList).WithArgs(int64(7)).WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t2", got[0].Title)
	require.Len(t, got[0].Authors, 1)
	assert.Equal(t, "MIT", got[0].Authors[0].Affiliations[0].Name)
	require.NotNil(t, got[0].Molecule)
	assert.Equal(t, "CCO", *got[0].Molecule.Smiles)
	assert.Equal(t, []models.StoredFile{{Filename: "a.txt", Path: "p/a.txt"}}, got[0].MassbankFiles)

	assert.Nil(t, got[1].Description)
	assert.Nil(t, got[1].Molecule)
	assert.Empty(t, got[1].Authors)
	assert.NotNil(t, got[1].MassbankFiles)
	assert.Empty(t, got[1].MassbankFiles)
}

func TestListByUser_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qList).WithArgs(int64(9)).WillReturnRows(sqlmock.NewRows(entryColumns))

	got, err := repo.ListByUser(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetByEntryIDForUser_CorruptAuthors(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(qGet).WithArgs(entryID, int64(7)).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow(int64(1), entryID, int64(7), "t", nil, []byte(`{not json`), nil, nil, nil, "submitted", now, now))

	_, err := repo.GetByEntryIDForUser(context.Background(), entryID, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.Contains(t, err.Error(), entryID)
}

func TestGetByEntryIDForUser_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qGet).WithArgs(entryID, int64(8)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEntryIDForUser(context.Background(), entryID, 8)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMalformedEntryIDIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	badUUID := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`}
	mock.ExpectQuery(qGet).WithArgs("not-a-uuid", int64(7)).WillReturnError(badUUID)
	mock.ExpectExec(qDelete).WithArgs("not-a-uuid", int64(7)).WillReturnError(badUUID)

	_, err := repo.GetByEntryIDForUser(context.Background(), "not-a-uuid", 7)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, repo.DeleteByEntryIDForUser(context.Background(), "not-a-uuid", 7), common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByEntryIDForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qDelete).WithArgs(entryID, int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByEntryIDForUser(context.Background(), entryID, 7))

	mock.ExpectExec(qDelete).WithArgs(entryID, int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.DeleteByEntryIDForUser(context.Background(), entryID, 8), common.ErrorNotFound)

	mock.ExpectExec(qDelete).WithArgs(entryID, int64(7)).WillReturnError(errors.New("db err"))
	err := repo.DeleteByEntryIDForUser(context.Background(), entryID, 7)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
