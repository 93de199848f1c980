package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/carhaus/autoservice-bot/internal/models"
)

// SQLite is the sqlite-backed Store implementation.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open opens (creating if necessary) the sqlite database at path.
func Open(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		telegram_id INTEGER PRIMARY KEY,
		username TEXT,
		first_name TEXT,
		last_name TEXT,
		phone TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS service_requests (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		car_model TEXT NOT NULL,
		license_plate TEXT NOT NULL,
		mileage INTEGER,
		requested_work TEXT NOT NULL,
		preferred_date TEXT NOT NULL,
		phone TEXT NOT NULL,
		real_name TEXT,
		real_surname TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(telegram_id)
	);

	CREATE INDEX IF NOT EXISTS idx_requests_status ON service_requests(status);
	CREATE INDEX IF NOT EXISTS idx_requests_user ON service_requests(user_id);
	`

	_, err := s.conn.Exec(schema)
	return err
}

// GetUser retrieves a user by telegram ID.
func (s *SQLite) GetUser(telegramID int64) (*models.User, error) {
	var u models.User
	var username, firstName, lastName, phone sql.NullString

	err := s.conn.QueryRow(
		`SELECT telegram_id, username, first_name, last_name, phone, created_at
		 FROM users WHERE telegram_id = ?`, telegramID,
	).Scan(&u.TelegramID, &username, &firstName, &lastName, &phone, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.Username = username.String
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Phone = phone.String
	return &u, nil
}

// AddUser inserts a user. Inserting an already-registered identity is a no-op,
// so replayed registration events cannot corrupt the record.
func (s *SQLite) AddUser(u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := s.conn.Exec(
		`INSERT OR IGNORE INTO users (telegram_id, username, first_name, last_name, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.TelegramID, u.Username, u.FirstName, u.LastName, u.Phone, u.CreatedAt,
	)
	return err
}

// UpdateUser rewrites the mutable profile fields of an existing user.
func (s *SQLite) UpdateUser(u *models.User) error {
	result, err := s.conn.Exec(
		`UPDATE users SET username = ?, first_name = ?, last_name = ?, phone = ?
		 WHERE telegram_id = ?`,
		u.Username, u.FirstName, u.LastName, u.Phone, u.TelegramID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns every registered user.
func (s *SQLite) ListUsers() ([]models.User, error) {
	rows, err := s.conn.Query(
		`SELECT telegram_id, username, first_name, last_name, phone, created_at
		 FROM users ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var username, firstName, lastName, phone sql.NullString
		if err := rows.Scan(&u.TelegramID, &username, &firstName, &lastName, &phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Username = username.String
		u.FirstName = firstName.String
		u.LastName = lastName.String
		u.Phone = phone.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddRequest inserts a service request. A request for an unknown user is a
// data inconsistency and is rejected.
func (s *SQLite) AddRequest(r *models.ServiceRequest) error {
	if _, err := s.GetUser(r.UserID); err != nil {
		if err == ErrNotFound {
			return fmt.Errorf("user %d for request %s: %w", r.UserID, r.ID, ErrNotFound)
		}
		return err
	}

	_, err := s.conn.Exec(
		`INSERT OR IGNORE INTO service_requests
		 (id, user_id, car_model, license_plate, mileage, requested_work,
		  preferred_date, phone, real_name, real_surname, status, admin_notes,
		  created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.CarModel, r.LicensePlate, r.Mileage, r.RequestedWork,
		r.PreferredDate, r.Phone, r.RealName, r.RealSurname, r.Status, r.AdminNotes,
		r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// GetRequest retrieves a request by its identity key.
func (s *SQLite) GetRequest(id string) (*models.ServiceRequest, error) {
	row := s.conn.QueryRow(
		`SELECT id, user_id, car_model, license_plate, mileage, requested_work,
		        preferred_date, phone, real_name, real_surname, status, admin_notes,
		        created_at, updated_at
		 FROM service_requests WHERE id = ?`, id,
	)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// UpdateRequest rewrites a request. The write is serialized at the database,
// so concurrent updates resolve last-writer-wins.
func (s *SQLite) UpdateRequest(r *models.ServiceRequest) error {
	r.UpdatedAt = time.Now()
	result, err := s.conn.Exec(
		`UPDATE service_requests SET
		   car_model = ?, license_plate = ?, mileage = ?, requested_work = ?,
		   preferred_date = ?, phone = ?, real_name = ?, real_surname = ?,
		   status = ?, admin_notes = ?, updated_at = ?
		 WHERE id = ?`,
		r.CarModel, r.LicensePlate, r.Mileage, r.RequestedWork,
		r.PreferredDate, r.Phone, r.RealName, r.RealSurname,
		r.Status, r.AdminNotes, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRequest removes a request permanently.
func (s *SQLite) DeleteRequest(id string) error {
	result, err := s.conn.Exec(`DELETE FROM service_requests WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRequestsByUser returns the user's requests, newest first.
func (s *SQLite) ListRequestsByUser(telegramID int64) ([]models.ServiceRequest, error) {
	rows, err := s.conn.Query(
		`SELECT id, user_id, car_model, license_plate, mileage, requested_work,
		        preferred_date, phone, real_name, real_surname, status, admin_notes,
		        created_at, updated_at
		 FROM service_requests WHERE user_id = ? ORDER BY created_at DESC`, telegramID,
	)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ListAllRequests returns every request, newest first.
func (s *SQLite) ListAllRequests() ([]models.ServiceRequest, error) {
	rows, err := s.conn.Query(
		`SELECT id, user_id, car_model, license_plate, mileage, requested_work,
		        preferred_date, phone, real_name, real_surname, status, admin_notes,
		        created_at, updated_at
		 FROM service_requests ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// ListRequestsByStatus returns requests in the given status, newest first.
func (s *SQLite) ListRequestsByStatus(status models.RequestStatus) ([]models.ServiceRequest, error) {
	rows, err := s.conn.Query(
		`SELECT id, user_id, car_model, license_plate, mileage, requested_work,
		        preferred_date, phone, real_name, real_surname, status, admin_notes,
		        created_at, updated_at
		 FROM service_requests WHERE status = ? ORDER BY created_at DESC`, status,
	)
	if err != nil {
		return nil, err
	}
	return collectRequests(rows)
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.ServiceRequest, error) {
	var r models.ServiceRequest
	var mileage sql.NullInt64
	var realName, realSurname, adminNotes sql.NullString

	err := row.Scan(
		&r.ID, &r.UserID, &r.CarModel, &r.LicensePlate, &mileage, &r.RequestedWork,
		&r.PreferredDate, &r.Phone, &realName, &realSurname, &r.Status, &adminNotes,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Mileage = int(mileage.Int64)
	r.RealName = realName.String
	r.RealSurname = realSurname.String
	r.AdminNotes = adminNotes.String
	return &r, nil
}

func collectRequests(rows *sql.Rows) ([]models.ServiceRequest, error) {
	defer rows.Close()

	var requests []models.ServiceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}
