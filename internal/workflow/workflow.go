package workflow

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/models"
	"github.com/carhaus/autoservice-bot/internal/store"
)

// Action is an admin operation on a service request.
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionDelete   Action = "delete"
	ActionComment  Action = "comment"
)

// ErrInvalidTransition is returned when a status change is not in the
// lifecycle table.
var ErrInvalidTransition = errors.New("invalid status transition")

// DefaultRejectReason is recorded when a rejection note is skipped.
const DefaultRejectReason = "Причина не указана"

// transitions is the full lifecycle table. pending→completed exists only for
// the mileage-inquiry answer path, which bypasses approval.
var transitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:  {models.StatusApproved, models.StatusRejected, models.StatusCompleted},
	models.StatusApproved: {models.StatusCompleted, models.StatusRejected},
}

// CanTransition reports whether from→to is in the lifecycle table.
func CanTransition(from, to models.RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Manager encodes the request status workflow and the notification fan-out
// each transition triggers.
type Manager struct {
	store        store.Store
	sender       dialog.Sender
	adminIDs     []int64
	mileageAdmin int64
	log          *zap.Logger
}

// New creates a lifecycle manager. mileageAdmin may be zero when no
// specialist is configured.
func New(st store.Store, sender dialog.Sender, adminIDs []int64, mileageAdmin int64, log *zap.Logger) *Manager {
	return &Manager{
		store:        st,
		sender:       sender,
		adminIDs:     adminIDs,
		mileageAdmin: mileageAdmin,
		log:          log,
	}
}

// Apply executes an admin action on the request, appending the note and
// notifying the owning user. The returned request reflects the new state;
// for deletions it is the pre-deletion snapshot.
func (m *Manager) Apply(requestID string, action Action, note string) (*models.ServiceRequest, error) {
	req, err := m.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionApprove:
		return req, m.transition(req, models.StatusApproved, note)
	case ActionReject:
		if note == "" {
			note = DefaultRejectReason
		}
		return req, m.transition(req, models.StatusRejected, note)
	case ActionComplete:
		return req, m.transition(req, models.StatusCompleted, note)
	case ActionDelete:
		if req.Status != models.StatusCompleted {
			return nil, fmt.Errorf("%w: only completed requests can be deleted, got %s",
				ErrInvalidTransition, req.Status)
		}
		if err := m.store.DeleteRequest(req.ID); err != nil {
			return nil, err
		}
		m.notifyOwner(req, fmt.Sprintf("🗑️ Ваша заявка #%s удалена из системы.", req.ShortID()), note, false)
		return req, nil
	case ActionComment:
		req.AdminNotes = note
		if err := m.store.UpdateRequest(req); err != nil {
			return nil, err
		}
		m.notifyOwner(req, fmt.Sprintf("📝 К вашей заявке #%s добавлен комментарий.", req.ShortID()), note, true)
		return req, nil
	}
	return nil, fmt.Errorf("unknown action %q", action)
}

func (m *Manager) transition(req *models.ServiceRequest, to models.RequestStatus, note string) error {
	if !CanTransition(req.Status, to) {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, req.Status, to)
	}

	req.Status = to
	req.AdminNotes = note
	if err := m.store.UpdateRequest(req); err != nil {
		return err
	}

	var headline string
	switch to {
	case models.StatusApproved:
		headline = fmt.Sprintf("✅ Ваша заявка #%s принята в работу.", req.ShortID())
	case models.StatusRejected:
		headline = fmt.Sprintf("❌ Ваша заявка #%s отклонена. Причина: %s", req.ShortID(), note)
	case models.StatusCompleted:
		headline = fmt.Sprintf("🏁 Ваша заявка #%s выполнена.", req.ShortID())
	}
	m.notifyOwner(req, headline, note, true)
	return nil
}

// AnswerMileage records the specialist's free-text answer as the admin note
// and completes the inquiry directly from pending, bypassing approval.
func (m *Manager) AnswerMileage(requestID, answer string) (*models.ServiceRequest, error) {
	req, err := m.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsMileageInquiry() {
		return nil, fmt.Errorf("request %s is not a mileage inquiry", req.ShortID())
	}
	if !CanTransition(req.Status, models.StatusCompleted) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, req.Status, models.StatusCompleted)
	}

	req.Status = models.StatusCompleted
	req.AdminNotes = answer
	if err := m.store.UpdateRequest(req); err != nil {
		return nil, err
	}

	err = m.sender.Send(dialog.Outgoing{
		ChatID: req.UserID,
		Text: fmt.Sprintf("📊 Получена информация о пробеге предыдущего ТО:\n\n🚗 %s\n🔢 %s\n\n%s",
			req.CarModel, req.LicensePlate, answer),
		Buttons: [][]dialog.Button{
			{{Label: "👁 Просмотреть детали", Data: "user_request_" + req.ID}},
		},
	})
	if err != nil {
		m.log.Error("failed to deliver mileage answer", zap.String("request_id", req.ID), zap.Error(err))
	}
	return req, nil
}

// RejectMileage declines a mileage inquiry without a note prompt.
func (m *Manager) RejectMileage(requestID string) (*models.ServiceRequest, error) {
	req, err := m.store.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(req.Status, models.StatusRejected) {
		return nil, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, req.Status, models.StatusRejected)
	}

	req.Status = models.StatusRejected
	if err := m.store.UpdateRequest(req); err != nil {
		return nil, err
	}

	if err := m.sender.Send(dialog.Outgoing{
		ChatID: req.UserID,
		Text: fmt.Sprintf("Ваш запрос о пробеге для %s (%s) был отклонен администратором.",
			req.CarModel, req.LicensePlate),
	}); err != nil {
		m.log.Warn("failed to notify user about rejection", zap.String("request_id", req.ID), zap.Error(err))
	}
	return req, nil
}

// notifyOwner sends a single status notification to the request's owner.
// Delivery failures never roll back the entity mutation.
func (m *Manager) notifyOwner(req *models.ServiceRequest, headline, note string, withDetails bool) {
	var text string
	if req.IsMileageInquiry() {
		text = fmt.Sprintf("%s\n\n🚗 %s\n🔢 %s", headline, req.CarModel, req.LicensePlate)
	} else {
		text = fmt.Sprintf("%s\n\n🚗 %s\n🔧 %s\n📅 %s", headline, req.CarModel, req.RequestedWork, req.PreferredDate)
	}
	if note != "" {
		text += fmt.Sprintf("\n📝 Комментарий: %s", note)
	}

	out := dialog.Outgoing{ChatID: req.UserID, Text: text}
	if withDetails {
		out.Buttons = [][]dialog.Button{
			{{Label: "👁 Просмотреть детали", Data: "user_request_" + req.ID}},
		}
	}
	if err := m.sender.Send(out); err != nil {
		m.log.Warn("failed to notify request owner",
			zap.String("request_id", req.ID),
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
	}
}

// NotifyCreated fans out the creation notification. Mileage inquiries go to
// the configured specialist only, with the full admin set as the fallback
// audience; every other request notifies all admins.
func (m *Manager) NotifyCreated(req *models.ServiceRequest) {
	if req.IsMileageInquiry() && m.mileageAdmin != 0 {
		text := fmt.Sprintf(
			"📊 Новый запрос информации о пробеге предыдущего ТО!\n\n"+
				"От: %s\nАвтомобиль: %s\nГос. номер: %s\nТекущий пробег: %d км\nТелефон: %s",
			req.SubmitterName(), req.CarModel, req.LicensePlate, req.Mileage, req.Phone)

		err := m.sender.Send(dialog.Outgoing{
			ChatID:  m.mileageAdmin,
			Text:    text,
			Buttons: viewButton(req.ID),
		})
		if err == nil {
			// The rest of the admins get an informational copy.
			for _, adminID := range m.adminIDs {
				if adminID == m.mileageAdmin {
					continue
				}
				m.sendToAdmin(adminID, fmt.Sprintf(
					"📊 Новый запрос информации о пробеге предыдущего ТО\n\n"+
						"От: %s\nАвтомобиль: %s\nГос. номер: %s\n\n"+
						"Запрос автоматически направлен специалисту по ТО.",
					req.SubmitterName(), req.CarModel, req.LicensePlate), nil)
			}
			return
		}

		m.log.Error("failed to notify mileage specialist, broadcasting to admins",
			zap.Int64("specialist_id", m.mileageAdmin),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		for _, adminID := range m.adminIDs {
			m.sendToAdmin(adminID, text+"\n\n⚠️ Не удалось направить специалисту по ТО, пожалуйста, обработайте запрос.",
				viewButton(req.ID))
		}
		return
	}

	text := fmt.Sprintf("📣 Новая заявка!\n\nОт: %s\nАвтомобиль: %s\nГос. номер: %s",
		req.SubmitterName(), req.CarModel, req.LicensePlate)
	for _, adminID := range m.adminIDs {
		m.sendToAdmin(adminID, text, viewButton(req.ID))
	}
}

func (m *Manager) sendToAdmin(adminID int64, text string, buttons [][]dialog.Button) {
	err := m.sender.Send(dialog.Outgoing{ChatID: adminID, Text: text, Buttons: buttons})
	if err != nil {
		m.log.Warn("failed to notify admin", zap.Int64("admin_id", adminID), zap.Error(err))
	}
}

func viewButton(requestID string) [][]dialog.Button {
	return [][]dialog.Button{
		{{Label: "👁 Просмотреть детали", Data: "notification_view_" + requestID}},
	}
}
