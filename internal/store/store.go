package store

import (
	"errors"

	"github.com/carhaus/autoservice-bot/internal/models"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary for users and service requests.
// Failures are reported to the caller, which logs them and treats the
// operation as not having happened.
type Store interface {
	GetUser(telegramID int64) (*models.User, error)
	AddUser(u *models.User) error
	UpdateUser(u *models.User) error
	ListUsers() ([]models.User, error)

	AddRequest(r *models.ServiceRequest) error
	GetRequest(id string) (*models.ServiceRequest, error)
	UpdateRequest(r *models.ServiceRequest) error
	DeleteRequest(id string) error
	ListRequestsByUser(telegramID int64) ([]models.ServiceRequest, error)
	ListAllRequests() ([]models.ServiceRequest, error)
	ListRequestsByStatus(status models.RequestStatus) ([]models.ServiceRequest, error)
}
