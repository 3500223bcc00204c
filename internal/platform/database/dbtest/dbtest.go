// Package dbtest has pgxmock helpers for code that runs inside pgx.BeginFunc.
package dbtest

import (
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

// ExpectCommit expects the commit of a pgx.BeginFunc transaction. BeginFunc always rolls back
// on the way out and ignores pgx.ErrTxClosed, so the mock has to answer that call too.
func ExpectCommit(m pgxmock.Expecter) {
	m.ExpectCommit()
	m.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
}

// ExpectRollback expects a pgx.BeginFunc transaction whose function returned an error.
func ExpectRollback(m pgxmock.Expecter) {
	m.ExpectRollback()
	m.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
}
