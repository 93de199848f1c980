// Package importer loads user and request exports from the legacy
// JSON-file storage into the sqlite store.
package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/models"
	"github.com/carhaus/autoservice-bot/internal/store"
)

// legacyUser mirrors the field naming of the old users.json export.
type legacyUser struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	CreatedAt  string `json:"created_at"`
}

// legacyRequest mirrors the field naming of the old requests.json export.
type legacyRequest struct {
	ID            string `json:"id"`
	UserID        int64  `json:"user_id"`
	CarModel      string `json:"car_model"`
	LicensePlate  string `json:"license_plate"`
	Mileage       int    `json:"mileage"`
	RequestedWork string `json:"requested_work"`
	PreferredDate string `json:"preferred_date"`
	Phone         string `json:"phone"`
	RealName      string `json:"real_name"`
	RealSurname   string `json:"real_surname"`
	Status        string `json:"status"`
	AdminNotes    string `json:"admin_notes"`
	CreatedAt     string `json:"created_at"`
}

// Result summarizes one import run.
type Result struct {
	UsersAdded      int
	UsersSkipped    int
	RequestsAdded   int
	RequestsSkipped int
}

// Importer copies legacy exports into a Store. Existing records are left
// untouched, so a rerun after a partial failure is safe.
type Importer struct {
	store store.Store
	log   *zap.Logger
}

func New(st store.Store, log *zap.Logger) *Importer {
	return &Importer{store: st, log: log}
}

// Run imports the given export files. An empty path skips that file.
func (im *Importer) Run(usersPath, requestsPath string) (*Result, error) {
	res := &Result{}

	if usersPath != "" {
		if err := im.importUsers(usersPath, res); err != nil {
			return res, fmt.Errorf("importing users: %w", err)
		}
	}
	if requestsPath != "" {
		if err := im.importRequests(requestsPath, res); err != nil {
			return res, fmt.Errorf("importing requests: %w", err)
		}
	}
	return res, nil
}

func (im *Importer) importUsers(path string, res *Result) error {
	var records []legacyUser
	if err := readJSON(path, &records); err != nil {
		return err
	}

	for _, rec := range records {
		if rec.TelegramID == 0 {
			im.log.Warn("skipping user without telegram_id", zap.String("username", rec.Username))
			res.UsersSkipped++
			continue
		}
		if _, err := im.store.GetUser(rec.TelegramID); err == nil {
			res.UsersSkipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		user := &models.User{
			TelegramID: rec.TelegramID,
			Username:   rec.Username,
			FirstName:  rec.FirstName,
			LastName:   rec.LastName,
			Phone:      rec.Phone,
			CreatedAt:  parseLegacyTime(rec.CreatedAt),
		}
		if err := im.store.AddUser(user); err != nil {
			return fmt.Errorf("adding user %d: %w", rec.TelegramID, err)
		}
		res.UsersAdded++
	}
	return nil
}

func (im *Importer) importRequests(path string, res *Result) error {
	var records []legacyRequest
	if err := readJSON(path, &records); err != nil {
		return err
	}

	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if _, err := im.store.GetRequest(rec.ID); err == nil {
			res.RequestsSkipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		status := models.RequestStatus(rec.Status)
		switch status {
		case models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusCompleted:
		case "":
			status = models.StatusPending
		default:
			im.log.Warn("skipping request with unknown status",
				zap.String("request_id", rec.ID), zap.String("status", rec.Status))
			res.RequestsSkipped++
			continue
		}

		created := parseLegacyTime(rec.CreatedAt)
		req := &models.ServiceRequest{
			ID:            rec.ID,
			UserID:        rec.UserID,
			CarModel:      rec.CarModel,
			LicensePlate:  rec.LicensePlate,
			Mileage:       rec.Mileage,
			RequestedWork: rec.RequestedWork,
			PreferredDate: rec.PreferredDate,
			Phone:         rec.Phone,
			RealName:      rec.RealName,
			RealSurname:   rec.RealSurname,
			Status:        status,
			AdminNotes:    rec.AdminNotes,
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		if err := im.store.AddRequest(req); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Owner missing from the export; orphaned requests are useless.
				im.log.Warn("skipping request with unknown owner",
					zap.String("request_id", rec.ID), zap.Int64("user_id", rec.UserID))
				res.RequestsSkipped++
				continue
			}
			return fmt.Errorf("adding request %s: %w", rec.ID, err)
		}
		res.RequestsAdded++
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// legacyTimeLayouts are the timestamp shapes seen in the old exports:
// isoformat with and without microseconds, plus RFC3339 with a zone.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseLegacyTime(raw string) time.Time {
	for _, layout := range legacyTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Now()
}
