package registry

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStorage keeps the registry in a SQLite database.
type SQLiteStorage struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err := s.createTable(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) createTable() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		borrower TEXT NOT NULL,
		email TEXT,
		course TEXT,
		purpose TEXT,
		items TEXT NOT NULL, -- JSON array of item descriptions
		loan_date TEXT NOT NULL, -- RFC 3339
		due_date TEXT NOT NULL, -- RFC 3339
		slip_path TEXT NOT NULL,
		returned BOOLEAN NOT NULL DEFAULT 0
	)`)
	return err
}

func (s *SQLiteStorage) Add(l *Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsJSON, err := json.Marshal(l.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO loans (id, borrower, email, course, purpose, items, loan_date, due_date, slip_path, returned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Borrower, l.Email, l.Course, l.Purpose, string(itemsJSON),
		l.LoanDate.Format(time.RFC3339), l.DueDate.Format(time.RFC3339), l.SlipPath, l.Returned)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Get(id string) (*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(
		`SELECT id, borrower, email, course, purpose, items, loan_date, due_date, slip_path, returned
		 FROM loans WHERE id = ?`, id)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (s *SQLiteStorage) List() ([]*Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, borrower, email, course, purpose, items, loan_date, due_date, slip_path, returned
		 FROM loans`)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var list []*Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortLoans(list)
	return list, nil
}

func (s *SQLiteStorage) MarkReturned(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE loans SET returned = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*Loan, error) {
	var l Loan
	var itemsJSON, loanDate, dueDate string
	err := row.Scan(&l.ID, &l.Borrower, &l.Email, &l.Course, &l.Purpose,
		&itemsJSON, &loanDate, &dueDate, &l.SlipPath, &l.Returned)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &l.Items); err != nil {
		return nil, fmt.Errorf("failed to parse items: %w", err)
	}
	if l.LoanDate, err = time.Parse(time.RFC3339, loanDate); err != nil {
		return nil, fmt.Errorf("failed to parse loan date: %w", err)
	}
	if l.DueDate, err = time.Parse(time.RFC3339, dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due date: %w", err)
	}
	return &l, nil
}
