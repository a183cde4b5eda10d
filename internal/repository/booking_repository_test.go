package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

func storageBooking() model.Booking {
	starts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return model.Booking{
		ChefID:         10,
		LocationID:     20,
		Kind:           model.BookingStorage,
		StorageUnit:    "B-12",
		StartsAt:       starts,
		EndsAt:         starts.AddDate(0, 0, 14),
		DailyRateCents: 1200,
	}
}

func TestBookingCreateTxStorage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	b := storageBooking()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs(b.ChefID, b.LocationID, b.Kind, b.StorageUnit, b.StartsAt, b.EndsAt, b.DailyRateCents, model.BookingActive).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	repo := NewBookingRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)

	assert.NoError(t, repo.CreateTx(context.Background(), tx, &b))
	assert.NoError(t, tx.Commit())
	assert.Equal(t, uint64(7), b.ID)
	assert.Equal(t, model.BookingActive, b.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateTxStorageOverlap(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	b := storageBooking()

	mock.ExpectBegin()
	// another active booking holds the unit over the requested window
	mock.ExpectQuery("SELECT 1 FROM bookings").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	repo := NewBookingRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.CreateTx(context.Background(), tx, &b), ErrConflict)
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateTxKitchenSkipsOverlapCheck(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	b := storageBooking()
	b.Kind = model.BookingKitchen
	b.StorageUnit = ""

	mock.ExpectBegin()
	// kitchen time is not exclusive, so no SELECT ... FOR UPDATE
	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectCommit()

	repo := NewBookingRepo(db)
	tx, err := db.BeginTx(context.Background(), nil)
	assert.NoError(t, err)

	assert.NoError(t, repo.CreateTx(context.Background(), tx, &b))
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCancelZeroRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE bookings SET status").
		WithArgs(model.BookingCancelled, uint64(7), uint64(10), model.BookingActive).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookingRepo(db)
	assert.ErrorIs(t, repo.Cancel(context.Background(), 7, 10), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
