package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/sims/internal/draft"
	"github.com/theirongolddev/sims/internal/review"
)

// DraftInfo summarizes a saved draft.
type DraftInfo struct {
	SchoolCode string
	Year       int
	UpdatedAt  time.Time
}

// SaveDraft stores a draft snapshot and its checklist, replacing any earlier
// save for the same school and year.
func (s *Store) SaveDraft(snap draft.Snapshot, cl review.Checklist) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	clData, err := json.Marshal(cl)
	if err != nil {
		return fmt.Errorf("encoding checklist: %w", err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO drafts (school_code, year, snapshot, checklist, updated_at)
		VALUES (?, ?, ?, ?, ?)`, snap.SchoolCode, snap.Year, string(data), string(clData), now())
	return err
}

// LoadDraft returns the saved draft for a school and year. ok is false when
// nothing was saved.
func (s *Store) LoadDraft(code string, year int) (snap draft.Snapshot, cl review.Checklist, ok bool, err error) {
	var data, clData string
	err = s.db.QueryRow("SELECT snapshot, checklist FROM drafts WHERE school_code = ? AND year = ?", code, year).
		Scan(&data, &clData)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, cl, false, nil
	}
	if err != nil {
		return snap, cl, false, err
	}
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return snap, cl, false, fmt.Errorf("decoding draft %s/%d: %w", code, year, err)
	}
	if err := json.Unmarshal([]byte(clData), &cl); err != nil {
		return snap, cl, false, fmt.Errorf("decoding checklist %s/%d: %w", code, year, err)
	}
	return snap, cl, true, nil
}

// DeleteDraft removes a saved draft.
func (s *Store) DeleteDraft(code string, year int) error {
	_, err := s.db.Exec("DELETE FROM drafts WHERE school_code = ? AND year = ?", code, year)
	return err
}

// ListDrafts returns all saved drafts, most recently updated first.
func (s *Store) ListDrafts() ([]DraftInfo, error) {
	rows, err := s.db.Query("SELECT school_code, year, updated_at FROM drafts ORDER BY updated_at DESC, school_code")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []DraftInfo
	for rows.Next() {
		var d DraftInfo
		var updated string
		if err := rows.Scan(&d.SchoolCode, &d.Year, &updated); err != nil {
			return nil, err
		}
		d.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		out = append(out, d)
	}
	return out, rows.Err()
}
