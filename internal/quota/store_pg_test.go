package quota

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreAdmitConsumesInsideWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	store := &pgStore{DB: db, now: func() time.Time { return now }}
	start := now.Truncate(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT window_start, used FROM quota_windows").
		WithArgs("user-1", string(CategoryFullModify)).
		WillReturnRows(sqlmock.NewRows([]string{"window_start", "used"}).AddRow(start, 4))
	mock.ExpectExec("UPDATE quota_windows SET used").
		WithArgs(5, "user-1", string(CategoryFullModify)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adm, err := store.Admit(context.Background(), "user-1", CategoryFullModify)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !adm.Allowed {
		t.Fatalf("expected admission")
	}
	if adm.Remaining != limitFullModify-5 {
		t.Fatalf("remaining = %d, want %d", adm.Remaining, limitFullModify-5)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAdmitRefusesExhaustedWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	store := &pgStore{DB: db, now: func() time.Time { return now }}
	start := now.Truncate(time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT window_start, used FROM quota_windows").
		WithArgs("user-1", string(CategoryFullModify)).
		WillReturnRows(sqlmock.NewRows([]string{"window_start", "used"}).AddRow(start, limitFullModify))
	mock.ExpectCommit()

	adm, err := store.Admit(context.Background(), "user-1", CategoryFullModify)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if adm.Allowed {
		t.Fatalf("expected refusal")
	}
	if !adm.ResetAt.Equal(start.Add(time.Hour)) {
		t.Fatalf("resetAt = %s, want %s", adm.ResetAt, start.Add(time.Hour))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreFirstAdmissionSurvivesInsertRace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	store := &pgStore{DB: db, now: func() time.Time { return now }}
	start := now.Truncate(time.Hour)

	// No row yet; a concurrent first admission wins the insert, so ours
	// conflicts away and the re-read sees the winner's row.
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT window_start, used FROM quota_windows").
		WithArgs("user-1", string(CategoryFullModify)).
		WillReturnRows(sqlmock.NewRows([]string{"window_start", "used"}))
	mock.ExpectExec(`INSERT INTO quota_windows .*\s*ON CONFLICT \(user_id, category\) DO NOTHING`).
		WithArgs("user-1", string(CategoryFullModify), start).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT window_start, used FROM quota_windows").
		WithArgs("user-1", string(CategoryFullModify)).
		WillReturnRows(sqlmock.NewRows([]string{"window_start", "used"}).AddRow(start, 1))
	mock.ExpectExec("UPDATE quota_windows SET used").
		WithArgs(2, "user-1", string(CategoryFullModify)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adm, err := store.Admit(context.Background(), "user-1", CategoryFullModify)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !adm.Allowed || adm.Remaining != limitFullModify-2 {
		t.Fatalf("admission = %+v, want second unit of the winner's window", adm)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAdmitRollsStaleWindowForward(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 3, 14, 11, 5, 0, 0, time.UTC)
	store := &pgStore{DB: db, now: func() time.Time { return now }}
	start := now.Truncate(time.Hour)
	previous := start.Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT window_start, used FROM quota_windows").
		WithArgs("user-1", string(CategoryQuickModify)).
		WillReturnRows(sqlmock.NewRows([]string{"window_start", "used"}).AddRow(previous, limitQuickModify))
	mock.ExpectExec("UPDATE quota_windows SET window_start").
		WithArgs(start, "user-1", string(CategoryQuickModify)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE quota_windows SET used").
		WithArgs(1, "user-1", string(CategoryQuickModify)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	adm, err := store.Admit(context.Background(), "user-1", CategoryQuickModify)
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !adm.Allowed || adm.Remaining != limitQuickModify-1 {
		t.Fatalf("admission = %+v, want fresh window with one unit used", adm)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
