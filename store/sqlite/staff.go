package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/roster-engine/generic"
	"github.com/warp/roster-engine/vacation"
)

var _ vacation.RequestStore = (*Store)(nil)

// =============================================================================
// STAFF (vacation.RequestStore interface)
// =============================================================================

// SaveStaff inserts or updates a roster member; a member without an ID
// gets a new one.
func (s *Store) SaveStaff(ctx context.Context, st vacation.Staff) (vacation.Staff, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO staff (id, staff_id, name, sex, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			staff_id = excluded.staff_id,
			name = excluded.name,
			sex = excluded.sex
	`
	_, err := s.db.ExecContext(ctx, query,
		st.ID, st.StaffID, st.Name, st.Sex,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return vacation.Staff{}, err
	}
	return st, nil
}

// ListStaff returns all roster members by name.
func (s *Store) ListStaff(ctx context.Context) ([]vacation.Staff, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, staff_id, name, sex FROM staff ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := []vacation.Staff{}
	for rows.Next() {
		var st vacation.Staff
		if err := rows.Scan(&st.ID, &st.StaffID, &st.Name, &st.Sex); err != nil {
			return nil, err
		}
		staff = append(staff, st)
	}
	return staff, rows.Err()
}

// =============================================================================
// PERSONAL REQUESTS
// =============================================================================

// SetRequest records the leave type of staffRef (ID or StaffID) on date.
func (s *Store) SetRequest(ctx context.Context, staffRef, date string, t vacation.LeaveType) error {
	if _, err := generic.ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolveStaff(ctx, staffRef)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO personal_requests (staff_key, date, leave_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(staff_key, date) DO UPDATE SET
			leave_type = excluded.leave_type
	`, key, date, string(t), time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteRequest removes the request of staffRef on date.
func (s *Store) DeleteRequest(ctx context.Context, staffRef, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolveStaff(ctx, staffRef)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"DELETE FROM personal_requests WHERE staff_key = ? AND date = ?", key, date)
	return err
}

// LoadBook returns every request dated in m, grouped by staff.
func (s *Store) LoadBook(ctx context.Context, m vacation.Month) (vacation.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT staff_key, date, leave_type
		FROM personal_requests
		WHERE date LIKE ?
		ORDER BY staff_key, date
	`, m.Prefix()+"-%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	book := make(vacation.Book)
	for rows.Next() {
		var key, date, leaveType string
		if err := rows.Scan(&key, &date, &leaveType); err != nil {
			return nil, err
		}
		book.Set(key, date, vacation.LeaveType(leaveType))
	}
	return book, rows.Err()
}

// resolveStaff maps an ID or StaffID to the record key. Caller holds mu.
func (s *Store) resolveStaff(ctx context.Context, ref string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM staff WHERE id = ? OR (staff_id <> '' AND staff_id = ?) LIMIT 1",
		ref, ref,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", generic.ErrStaffNotFound, ref)
	}
	return id, err
}
