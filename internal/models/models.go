package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCompleted RequestStatus = "completed"
)

// User represents a registered client of the auto service.
type User struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	Phone      string
	CreatedAt  time.Time
}

// FullName returns the name the client registered with.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ServiceRequest is a single service appointment request submitted by a client.
// RealName/RealSurname are a snapshot taken at submission time and do not
// follow later profile changes.
type ServiceRequest struct {
	ID            string
	UserID        int64
	CarModel      string
	LicensePlate  string
	Mileage       int
	RequestedWork string
	PreferredDate string
	Phone         string
	RealName      string
	RealSurname   string
	Status        RequestStatus
	AdminNotes    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewServiceRequest creates a pending request with a fresh identity key.
func NewServiceRequest(userID int64, carModel, licensePlate string, mileage int,
	requestedWork, preferredDate, phone, realName, realSurname string) *ServiceRequest {
	now := time.Now()
	return &ServiceRequest{
		ID:            uuid.NewString(),
		UserID:        userID,
		CarModel:      carModel,
		LicensePlate:  licensePlate,
		Mileage:       mileage,
		RequestedWork: requestedWork,
		PreferredDate: preferredDate,
		Phone:         phone,
		RealName:      realName,
		RealSurname:   realSurname,
		Status:        StatusPending,
		AdminNotes:    "",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ShortID is the request id prefix shown to people.
func (r *ServiceRequest) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// SubmitterName prefers the snapshot taken at submission time.
func (r *ServiceRequest) SubmitterName() string {
	switch {
	case r.RealName != "" && r.RealSurname != "":
		return r.RealName + " " + r.RealSurname
	case r.RealName != "":
		return r.RealName
	}
	return ""
}

// Work types offered by the service. WorkMileageInfo is the informational
// request with the abbreviated lifecycle: it is routed to a single specialist
// and completes directly from pending once answered.
const (
	WorkMaintenance        = "Техническое обслуживание"
	WorkSuspensionCheck    = "Диагностика подвески"
	WorkComputerDiagnostic = "Компьютерная диагностика"
	WorkWheelAlignment     = "Развал-схождение"
	WorkMileageInfo        = "Узнать пробег предыдущего техобслуживания"
)

// IsMileageInquiry reports whether the request follows the abbreviated
// specialist-only lifecycle.
func (r *ServiceRequest) IsMileageInquiry() bool {
	return r.RequestedWork == WorkMileageInfo
}

// Car catalog offered in the request form.
var CarBrands = map[string][]string{
	"Toyota": {
		"Corolla", "Ch-r", "Camry", "Rav4", "Highlander", "Fortuner", "Hilux",
		"Land Cruiser 200", "Land Cruiser 300", "Land Cruiser Prado",
	},
	"Lexus": {
		"IS", "IS 250", "IS 350",
		"ES 200", "ES 250", "ES 350",
		"GS 300", "GS 350",
		"UX 200", "UX 250h",
		"NX 200", "NX 200t", "NX 300", "NX 300h",
		"RX 270", "RX 200t", "RX 300", "RX 350", "RX 450h",
		"GX 460", "GX 470", "GX 500",
		"LX 570", "LX 600",
	},
}

// BrandNames returns the catalog brands in a stable order.
func BrandNames() []string {
	return []string{"Lexus", "Toyota"}
}

// CarYears lists the model years accepted by the form.
var CarYears = yearRange(2006, 2025)

func yearRange(from, to int) []int {
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}
