package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamingty/storefront/internal/domain"
	apperrors "github.com/gamingty/storefront/pkg/errors"
)

func newCartTestFixture(t *testing.T) (*CartRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewCartRepository(mock)
	return repo, mock
}

func fixtureCart(clientID string) *domain.Cart {
	cart := domain.NewCart(clientID)
	cart.AddItem(domain.CartItem{
		ID:                    "p1",
		Title:                 "Steam Gift Card",
		Price:                 2500,
		Type:                  domain.TypeDigitalPins,
		AllowedPaymentMethods: []string{"card"},
	})
	return cart
}

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	cart := fixtureCart("client-1")
	snapshot, err := json.Marshal(cart)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT snapshot FROM carts").
		WithArgs("client-1").
		WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow(snapshot))

	got, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT snapshot FROM carts").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"snapshot"}))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Get_CorruptSnapshot(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT snapshot FROM carts").
		WithArgs("client-1").
		WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow([]byte("{broken")))

	_, err := repo.Get(context.Background(), "client-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Save_Upserts(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	cart := fixtureCart("client-1")

	mock.ExpectExec("INSERT INTO carts").
		WithArgs(cart.ClientID, pgxmock.AnyArg(), cart.Version).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Save(context.Background(), cart)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveIfVersion_Success(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	cart := fixtureCart("client-1")

	mock.ExpectExec("INSERT INTO carts").
		WithArgs(cart.ClientID, pgxmock.AnyArg(), 1, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ok, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, cart.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveIfVersion_StaleVersion(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	cart := fixtureCart("client-1")

	mock.ExpectExec("INSERT INTO carts").
		WithArgs(cart.ClientID, pgxmock.AnyArg(), 3, 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	ok, err := repo.SaveIfVersion(context.Background(), cart, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	// Version must roll back so the caller can re-read and retry.
	assert.Equal(t, 2, cart.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SaveIfVersion_ExecError(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	cart := fixtureCart("client-1")

	mock.ExpectExec("INSERT INTO carts").
		WithArgs(cart.ClientID, pgxmock.AnyArg(), 1, 0).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save cart")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mock := newCartTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM carts").
		WithArgs("client-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Delete(context.Background(), "client-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
