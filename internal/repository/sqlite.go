// Package repository persists the conversation log.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/audrey/internal/domain"
)

// ConversationStore is the append-only conversation log.
type ConversationStore interface {
	BeginRecord(ctx context.Context, content string) (domain.RecordHandle, error)
	CompleteRecord(ctx context.Context, handle domain.RecordHandle, response string) error
	ListAll(ctx context.Context) ([]domain.ConversationRecord, error)
	Close() error
}

// ErrRecordNotFound is returned when a handle addresses no record.
var ErrRecordNotFound = errors.New("record not found")

// ErrUnsupportedDatabase is returned for database URLs with a scheme other than sqlite.
var ErrUnsupportedDatabase = errors.New("unsupported database url")

// SQLiteStore implements ConversationStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ ConversationStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database named by databaseURL and creates the messages table.
func NewSQLiteStore(databaseURL string) (*SQLiteStore, error) {
	dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// ParseDatabaseURL converts a DATABASE_URL into a go-sqlite3 DSN.
// It accepts sqlite:///relative.db, sqlite:////absolute.db, sqlite:// (memory),
// file: DSNs and bare paths.
func ParseDatabaseURL(databaseURL string) (string, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", fmt.Errorf("%w: empty", ErrUnsupportedDatabase)
	case u == "sqlite://", u == "sqlite:///:memory:", u == ":memory:":
		return ":memory:", nil
	case strings.HasPrefix(u, "sqlite:///"):
		return strings.TrimPrefix(u, "sqlite:///"), nil
	case strings.HasPrefix(u, "file:"):
		return u, nil
	case strings.Contains(u, "://"):
		scheme, _, _ := strings.Cut(u, "://")
		return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedDatabase, scheme)
	default:
		return u, nil
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// migrate creates the messages table if it does not exist.
func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT,
		response TEXT
	)`)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that a connection can be acquired.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.withConn(ctx, "ping", func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// withConn acquires a dedicated connection for fn and releases it on every path.
func (s *SQLiteStore) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return &domain.StorageError{Op: op, Err: err}
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		var se *domain.StorageError
		if errors.As(err, &se) {
			return err
		}
		return &domain.StorageError{Op: op, Err: err}
	}
	return nil
}

// BeginRecord inserts a record with an absent response and returns its handle.
func (s *SQLiteStore) BeginRecord(ctx context.Context, content string) (domain.RecordHandle, error) {
	var handle domain.RecordHandle
	err := s.withConn(ctx, "begin_record", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `INSERT INTO messages (content, response) VALUES (?, NULL)`, content)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		handle = domain.RecordHandle(id)
		return nil
	})
	return handle, err
}

// CompleteRecord sets the response of the record addressed by handle.
// A second call overwrites the first.
func (s *SQLiteStore) CompleteRecord(ctx context.Context, handle domain.RecordHandle, response string) error {
	return s.withConn(ctx, "complete_record", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `UPDATE messages SET response = ? WHERE id = ?`, response, int64(handle))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: id %d", ErrRecordNotFound, handle)
		}
		return nil
	})
}

// ListAll returns every record ordered by id.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.ConversationRecord, error) {
	records := []domain.ConversationRecord{}
	err := s.withConn(ctx, "list_all", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `SELECT id, content, response FROM messages ORDER BY id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rec domain.ConversationRecord
			var content, response sql.NullString
			if err := rows.Scan(&rec.ID, &content, &response); err != nil {
				return err
			}
			rec.Content = content.String
			if response.Valid {
				r := response.String
				rec.Response = &r
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}
