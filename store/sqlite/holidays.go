package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/roster-engine/calendar"
	"github.com/warp/roster-engine/generic"
)

var _ calendar.LunarSource = (*Store)(nil)

// =============================================================================
// HOLIDAY TABLE (calendar.LunarSource)
// =============================================================================

// Holiday is an admin-maintained movable holiday.
type Holiday struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

// SaveHoliday stores the holiday on date, replacing any previous name.
func (s *Store) SaveHoliday(ctx context.Context, date, name string) (Holiday, error) {
	if _, err := generic.ParseDate(date); err != nil {
		return Holiday{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h := Holiday{ID: uuid.NewString(), Date: date, Name: name}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			name = excluded.name
	`, h.ID, h.Date, h.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Holiday{}, err
	}
	err = s.db.QueryRowContext(ctx, "SELECT id FROM holidays WHERE date = ?", date).Scan(&h.ID)
	return h, err
}

// DeleteHoliday removes the holiday on date.
func (s *Store) DeleteHoliday(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE date = ?", date)
	return err
}

// ListHolidays returns every stored holiday by date.
func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name FROM holidays ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// LunarHolidays serves the stored holidays as a lunar source. A read
// failure yields an empty table; the resolver then falls back to its other
// sources.
func (s *Store) LunarHolidays() map[string]string {
	holidays, err := s.ListHolidays(context.Background())
	if err != nil {
		return nil
	}
	out := make(map[string]string, len(holidays))
	for _, h := range holidays {
		out[h.Date] = h.Name
	}
	return out
}
