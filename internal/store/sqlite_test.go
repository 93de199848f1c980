package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/carhaus/autoservice-bot/internal/models"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testUser(id int64) *models.User {
	return &models.User{
		TelegramID: id,
		Username:   "ivan",
		FirstName:  "Иван",
		LastName:   "Петров",
		Phone:      "+79001234567",
		CreatedAt:  time.Now(),
	}
}

func testRequest(userID int64) *models.ServiceRequest {
	return models.NewServiceRequest(userID, "Toyota Camry 2020 г.", "A123BC", 50000,
		models.WorkMaintenance, "15.09.2026", "+79001234567", "Иван", "Петров")
}

func TestUserRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetUser(100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUser on empty store: %v", err)
	}

	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	got, err := s.GetUser(100)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.FirstName != "Иван" || got.LastName != "Петров" || got.Phone != "+79001234567" {
		t.Fatalf("got %+v", got)
	}
}

func TestAddUserIsIdempotent(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	again := testUser(100)
	again.FirstName = "Другой"
	if err := s.AddUser(again); err != nil {
		t.Fatalf("second AddUser: %v", err)
	}

	got, _ := s.GetUser(100)
	if got.FirstName != "Иван" {
		t.Fatalf("replayed insert overwrote the record: %+v", got)
	}

	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("got %d users, want 1", len(users))
	}
}

func TestUpdateUser(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	u, _ := s.GetUser(100)
	u.Phone = "+79009999999"
	if err := s.UpdateUser(u); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, _ := s.GetUser(100)
	if got.Phone != "+79009999999" {
		t.Fatalf("phone not updated: %+v", got)
	}

	missing := testUser(999)
	if err := s.UpdateUser(missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateUser for missing user: %v", err)
	}
}

func TestAddRequestRejectsUnknownUser(t *testing.T) {
	s := openTestStore(t)

	err := s.AddRequest(testRequest(100))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRequestRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	req := testRequest(100)
	if err := s.AddRequest(req); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}
	// Replayed insert is a no-op.
	if err := s.AddRequest(req); err != nil {
		t.Fatalf("second AddRequest: %v", err)
	}

	got, err := s.GetRequest(req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if got.CarModel != req.CarModel || got.Mileage != 50000 || got.Status != models.StatusPending {
		t.Fatalf("got %+v", got)
	}
	if got.AdminNotes != "" {
		t.Fatalf("fresh request carries notes: %q", got.AdminNotes)
	}

	got.Status = models.StatusApproved
	got.AdminNotes = "будет готово к обеду"
	if err := s.UpdateRequest(got); err != nil {
		t.Fatalf("UpdateRequest: %v", err)
	}

	updated, _ := s.GetRequest(req.ID)
	if updated.Status != models.StatusApproved || updated.AdminNotes != "будет готово к обеду" {
		t.Fatalf("update not persisted: %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatal("UpdatedAt not advanced by the update")
	}
}

func TestDeleteRequest(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	req := testRequest(100)
	if err := s.AddRequest(req); err != nil {
		t.Fatalf("AddRequest: %v", err)
	}

	if err := s.DeleteRequest(req.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}
	if _, err := s.GetRequest(req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("request still readable after delete: %v", err)
	}
	if err := s.DeleteRequest(req.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestRequestListsFilterAndOrder(t *testing.T) {
	s := openTestStore(t)
	if err := s.AddUser(testUser(100)); err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	other := testUser(200)
	other.Username = "petr"
	if err := s.AddUser(other); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	old := testRequest(100)
	old.CreatedAt = time.Now().Add(-time.Hour)
	recent := testRequest(100)
	foreign := testRequest(200)
	foreign.Status = models.StatusCompleted

	for _, r := range []*models.ServiceRequest{old, recent, foreign} {
		if err := s.AddRequest(r); err != nil {
			t.Fatalf("AddRequest: %v", err)
		}
	}

	mine, err := s.ListRequestsByUser(100)
	if err != nil {
		t.Fatalf("ListRequestsByUser: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d requests for user 100, want 2", len(mine))
	}
	if mine[0].ID != recent.ID {
		t.Fatal("list not ordered newest first")
	}

	pending, err := s.ListRequestsByStatus(models.StatusPending)
	if err != nil {
		t.Fatalf("ListRequestsByStatus: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}

	completed, err := s.ListRequestsByStatus(models.StatusCompleted)
	if err != nil {
		t.Fatalf("ListRequestsByStatus: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != foreign.ID {
		t.Fatalf("completed list: %+v", completed)
	}

	all, err := s.ListAllRequests()
	if err != nil {
		t.Fatalf("ListAllRequests: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d total, want 3", len(all))
	}
}
