package relational_test

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/secretd/internal/domain"
	"github.com/systmms/secretd/internal/store/relational"
)

func TestStore_Get(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	secret := domain.Secret{ID: "s1", Tenant: "acme", Name: "db-password"}
	raw, err := json.Marshal(secret)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM secrets WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(raw))

	s := relational.New(db, relational.Postgres, "")
	got, err := s.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "db-password", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_PostgresUpsertShape(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO secrets (tenant, id, doc, updated_at) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at",
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	s := relational.New(db, relational.Postgres, "")
	err = s.Save(context.Background(), domain.Secret{ID: "s1", Tenant: "acme"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Save_MySQLUpsertShape(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO secrets (tenant, id, doc, updated_at) VALUES (?, ?, ?, ?) ON DUPLICATE KEY UPDATE doc = VALUES(doc), updated_at = VALUES(updated_at)",
	)).WillReturnResult(sqlmock.NewResult(0, 1))

	s := relational.New(db, relational.MySQL, "")
	err = s.Save(context.Background(), domain.Secret{ID: "s1", Tenant: "acme"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List_TenantFiltered(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	raw, err := json.Marshal(domain.Secret{ID: "a", Tenant: "acme"})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM secrets WHERE tenant = $1")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(raw))

	s := relational.New(db, relational.Postgres, "")
	list, err := s.List(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM secrets WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	s := relational.New(db, relational.Postgres, "")
	_, err = s.Get(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStore_Get_ResolvesByIDRegardlessOfTenant(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	raw, err := json.Marshal(domain.Secret{ID: "s1", Tenant: "acme"})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT doc FROM secrets WHERE id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).AddRow(raw))

	s := relational.New(db, relational.Postgres, "")
	got, err := s.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Tenant)
	assert.NoError(t, mock.ExpectationsWereMet())
}
