package mintr

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/segmentio/ksuid"
	_ "modernc.org/sqlite"
)

const (
	PrefLastMint    = "last_mint"
	PrefLastMintATA = "last_mint_ata"
)

const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusDone    = "done"
	StatusFail    = "fail"
	StatusUnknown = "unknown"
)

// Record is one submitted operation in the local ledger.
type Record struct {
	ID        string
	Kind      string
	Network   string
	Mint      string
	To        string
	Amount    uint64
	Decimals  uint8
	Signature string
	Status    string
	Time      int64
}

type Contact struct {
	Label string
	Owner string
}

type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			id TEXT PRIMARY KEY,
			kind TEXT,
			network TEXT,
			mint TEXT,
			to_addr TEXT,
			amount INTEGER,
			decimals INTEGER,
			signature TEXT,
			status TEXT,
			time INTEGER
		);

		CREATE TABLE IF NOT EXISTS prefs (
			key TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS contacts (
			label TEXT PRIMARY KEY,
			owner TEXT
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveRecord(r Record) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO operations
		(id, kind, network, mint, to_addr, amount, decimals, signature, status, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Kind, r.Network, r.Mint, r.To, int64(r.Amount), r.Decimals, r.Signature, r.Status, r.Time)
	return err
}

func (s *Store) LoadRecord(id string) (Record, error) {
	row := s.db.QueryRow(`
		SELECT id, kind, network, mint, to_addr, amount, decimals, signature, status, time
		FROM operations WHERE id = ?
	`, id)
	return scanRecord(row)
}

func (s *Store) ListRecords(limit int) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT id, kind, network, mint, to_addr, amount, decimals, signature, status, time
		FROM operations ORDER BY time DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var amount int64
	var mint, to, sig sql.NullString
	err := sc.Scan(&r.ID, &r.Kind, &r.Network, &mint, &to, &amount, &r.Decimals, &sig, &r.Status, &r.Time)
	if err != nil {
		return Record{}, err
	}
	r.Mint, r.To, r.Signature = mint.String, to.String, sig.String
	r.Amount = uint64(amount)
	return r, nil
}

func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO prefs (key, value) VALUES (?, ?)`, key, value)
	return err
}

// GetPref returns "" for an unset key.
func (s *Store) GetPref(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) SaveContact(c Contact) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO contacts (label, owner) VALUES (?, ?)`, c.Label, c.Owner)
	return err
}

func (s *Store) GetContact(label string) (Contact, error) {
	c := Contact{Label: label}
	err := s.db.QueryRow(`SELECT owner FROM contacts WHERE label = ?`, label).Scan(&c.Owner)
	return c, err
}

func (s *Store) DeleteContact(label string) error {
	res, err := s.db.Exec(`DELETE FROM contacts WHERE label = ?`, label)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("contact %q not found", label)
	}
	return nil
}

func (s *Store) ListContacts() ([]Contact, error) {
	rows, err := s.db.Query(`SELECT label, owner FROM contacts ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Label, &c.Owner); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// newRecordID returns a time-ordered ledger id prefixed with the panel kind.
func newRecordID(kind string) string {
	return kind + "_" + ksuid.New().String()
}
