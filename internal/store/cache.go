package store

import (
	"database/sql"
	"time"

	"github.com/theirongolddev/sims/internal/model"
)

// SaveBudgetCodes replaces the cached budget-code taxonomy.
func (s *Store) SaveBudgetCodes(codes []model.BudgetCode) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM budget_codes"); err != nil {
		return err
	}
	ts := now()
	for _, c := range codes {
		_, err = tx.Exec(`INSERT OR REPLACE INTO budget_codes (code, name, grp, kind, parent, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?)`, c.Code, c.Name, c.Group, c.Kind, c.Parent, ts)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadBudgetCodes returns the cached taxonomy in code order. fresh is false
// when the cache is empty or older than maxAge; a zero maxAge never expires.
func (s *Store) LoadBudgetCodes(maxAge time.Duration) (codes []model.BudgetCode, fresh bool, err error) {
	rows, err := s.db.Query("SELECT code, name, grp, kind, parent, fetched_at FROM budget_codes ORDER BY code")
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()

	var oldest time.Time
	for rows.Next() {
		var c model.BudgetCode
		var grp, kind, parent sql.NullString
		var fetched string
		if err := rows.Scan(&c.Code, &c.Name, &grp, &kind, &parent, &fetched); err != nil {
			return nil, false, err
		}
		c.Group, c.Kind, c.Parent = grp.String, kind.String, parent.String
		if t, err := time.Parse(time.RFC3339, fetched); err == nil && (oldest.IsZero() || t.Before(oldest)) {
			oldest = t
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if len(codes) == 0 {
		return nil, false, nil
	}
	fresh = maxAge == 0 || time.Since(oldest) <= maxAge
	return codes, fresh, nil
}
