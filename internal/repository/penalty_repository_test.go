package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
)

func TestPenaltyApprove(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE overstay_penalties SET status").
		WithArgs(model.PenaltyApproved, uint64(5), model.PenaltyPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPenaltyRepo(db)
	assert.NoError(t, repo.Approve(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyApproveNotPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// already charged or waived, so the guarded update touches nothing
	mock.ExpectExec("UPDATE overstay_penalties SET status").
		WithArgs(model.PenaltyApproved, uint64(5), model.PenaltyPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPenaltyRepo(db)
	assert.ErrorIs(t, repo.Approve(context.Background(), 5), ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyMarkCharged(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE overstay_penalties SET status").
		WithArgs(model.PenaltyCharged, "pay_abc123", uint64(5), model.PenaltyApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPenaltyRepo(db)
	assert.NoError(t, repo.MarkCharged(context.Background(), 5, "pay_abc123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPenaltyWaive(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE overstay_penalties SET status").
		WithArgs(model.PenaltyWaived, uint64(5), model.PenaltyPending, model.PenaltyApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPenaltyRepo(db)
	assert.NoError(t, repo.Waive(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}
