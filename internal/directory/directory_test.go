// Package directory tests use sqlmock to mock store interactions.
package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockResolver(t *testing.T) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewResolver(db), mock
}

func TestResolver_DeviceID(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantID    int64
		wantFound bool
		wantErr   bool
	}{
		{
			name: "device found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id"}).AddRow(int64(17))
				mock.ExpectQuery("SELECT id FROM devices").
					WithArgs("D1").
					WillReturnRows(rows)
			},
			wantID:    17,
			wantFound: true,
		},
		{
			name: "device missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id FROM devices").
					WithArgs("D1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantFound: false,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id FROM devices").
					WithArgs("D1").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, mock := newMockResolver(t)
			tt.setupMock(mock)

			id, found, err := resolver.DeviceID(context.Background(), "D1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeviceID() error = %v, wantErr %v", err, tt.wantErr)
			}
			if found != tt.wantFound {
				t.Errorf("DeviceID() found = %v, want %v", found, tt.wantFound)
			}
			if id != tt.wantID {
				t.Errorf("DeviceID() = %d, want %d", id, tt.wantID)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestResolver_DeviceName(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantName  string
		wantFound bool
		wantErr   bool
	}{
		{
			name: "device found",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"name"}).AddRow("Basement Fan")
				mock.ExpectQuery("SELECT name FROM devices").
					WithArgs("D1").
					WillReturnRows(rows)
			},
			wantName:  "Basement Fan",
			wantFound: true,
		},
		{
			name: "device missing",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT name FROM devices").
					WithArgs("D1").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))
			},
			wantFound: false,
		},
		{
			name: "query error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT name FROM devices").
					WithArgs("D1").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, mock := newMockResolver(t)
			tt.setupMock(mock)

			name, found, err := resolver.DeviceName(context.Background(), "D1")
			if (err != nil) != tt.wantErr {
				t.Fatalf("DeviceName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if found != tt.wantFound {
				t.Errorf("DeviceName() found = %v, want %v", found, tt.wantFound)
			}
			if name != tt.wantName {
				t.Errorf("DeviceName() = %q, want %q", name, tt.wantName)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet expectations: %v", err)
			}
		})
	}
}

func TestResolver_RecipientTags(t *testing.T) {
	t.Run("two subscribed users", func(t *testing.T) {
		resolver, mock := newMockResolver(t)

		mappings := sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)).AddRow(int64(2))
		mock.ExpectQuery("SELECT user_id FROM user_devices").
			WithArgs(int64(17)).
			WillReturnRows(mappings)
		mock.ExpectQuery("SELECT user_uid FROM users").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"user_uid"}).AddRow("tag-a"))
		mock.ExpectQuery("SELECT user_uid FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"user_uid"}).AddRow("tag-b"))

		tags, err := resolver.RecipientTags(context.Background(), 17)
		if err != nil {
			t.Fatalf("RecipientTags() error = %v", err)
		}
		if len(tags) != 2 || tags[0] != "tag-a" || tags[1] != "tag-b" {
			t.Errorf("RecipientTags() = %v, want [tag-a tag-b]", tags)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("no subscribed users", func(t *testing.T) {
		resolver, mock := newMockResolver(t)

		mock.ExpectQuery("SELECT user_id FROM user_devices").
			WithArgs(int64(17)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

		tags, err := resolver.RecipientTags(context.Background(), 17)
		if err != nil {
			t.Fatalf("RecipientTags() error = %v", err)
		}
		if len(tags) != 0 {
			t.Errorf("RecipientTags() = %v, want empty", tags)
		}
	})

	t.Run("user without tag is dropped", func(t *testing.T) {
		resolver, mock := newMockResolver(t)

		mappings := sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)).AddRow(int64(2))
		mock.ExpectQuery("SELECT user_id FROM user_devices").
			WithArgs(int64(17)).
			WillReturnRows(mappings)
		mock.ExpectQuery("SELECT user_uid FROM users").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"user_uid"}))
		mock.ExpectQuery("SELECT user_uid FROM users").
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"user_uid"}).AddRow("tag-b"))

		tags, err := resolver.RecipientTags(context.Background(), 17)
		if err != nil {
			t.Fatalf("RecipientTags() error = %v", err)
		}
		if len(tags) != 1 || tags[0] != "tag-b" {
			t.Errorf("RecipientTags() = %v, want [tag-b]", tags)
		}
	})

	t.Run("mapping query error", func(t *testing.T) {
		resolver, mock := newMockResolver(t)

		mock.ExpectQuery("SELECT user_id FROM user_devices").
			WithArgs(int64(17)).
			WillReturnError(errors.New("connection reset"))

		if _, err := resolver.RecipientTags(context.Background(), 17); err == nil {
			t.Error("RecipientTags() should propagate query errors")
		}
	})
}

func TestNewDB_InvalidDSN(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{name: "invalid DSN", dsn: "invalid-dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDB(tt.dsn)
			if err == nil {
				db.Close()
				t.Skip("Postgres appears to be available locally")
			}
		})
	}
}
