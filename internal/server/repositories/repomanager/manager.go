package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/nobs/internal/dbx"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/accesstokens"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/entries"
	"github.com/dmitrijs2005/nobs/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	AccessTokens(db dbx.DBTX) accesstokens.Repository
	Entries(db dbx.DBTX) entries.Repository
}
