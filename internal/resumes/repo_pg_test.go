package resumes

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateConflictsWhenUserHasResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	resume := MasterResume{
		ID:         "resume-1",
		UserID:     "user-1",
		SourceType: SourceJSON,
		Version:    1,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	// ON CONFLICT DO NOTHING reports zero rows affected.
	mock.ExpectExec("INSERT INTO master_resumes").
		WithArgs(
			resume.ID,
			resume.UserID,
			sqlmock.AnyArg(), // structured_data
			string(SourceJSON),
			sqlmock.AnyArg(), // source_metadata
			resume.Version,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Create(context.Background(), resume); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateVersionConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	resume := MasterResume{UserID: "user-1", SourceType: SourceJSON}

	mock.ExpectQuery("UPDATE master_resumes").
		WillReturnError(sql.ErrNoRows)

	// The follow-up existence probe finds a row, so the miss is a version race.
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "structured_data", "source_type", "source_metadata", "version", "created_at", "updated_at",
	}).AddRow("resume-1", "user-1", []byte(`{"personal_info":{"name":"A","email":"a@b.co"},"skills":[],"experience":[]}`),
		"json", []byte(`{}`), 3, time.Now().UTC(), time.Now().UTC())
	mock.ExpectQuery("SELECT id, user_id, structured_data").
		WithArgs("user-1").
		WillReturnRows(rows)

	if _, err := repo.Update(context.Background(), resume, 2); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoDeleteMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("DELETE FROM master_resumes").
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
