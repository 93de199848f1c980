package bot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/models"
	"github.com/carhaus/autoservice-bot/internal/store"
	"github.com/carhaus/autoservice-bot/internal/workflow"
)

func (b *Bot) isAdmin(userID int64) bool {
	return b.cfg.IsAdmin(userID)
}

func (b *Bot) showAdminMenu(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !b.isAdmin(ev.UserID) {
		b.reply(ev.ChatID, "Эта функция доступна только администраторам.")
		return b.showMainMenu(ev, sess)
	}

	b.replyButtons(ev.ChatID, "👨‍💼 Меню администратора\n\nВыберите раздел:", [][]dialog.Button{
		dialog.Row(dialog.Button{Label: "📥 Новые заявки", Data: "admin_requests_pending"}),
		dialog.Row(dialog.Button{Label: "🏁 Выполненные заявки", Data: "admin_requests_completed"}),
		dialog.Row(dialog.Button{Label: "📊 Запросы о пробеге", Data: "admin_mileage_requests"}),
		backRow("main_menu"),
	})
	return dialog.StateAdminMenu, nil
}

// listAdminRequests shows the triage queues. Pending mileage inquiries are
// excluded here; they have their own section.
func (b *Bot) listAdminRequests(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	status := models.StatusPending
	heading := "📥 Новые заявки:"
	if ev.Payload == "admin_requests_completed" {
		status = models.StatusCompleted
		heading = "🏁 Выполненные заявки:"
	}

	requests, err := b.store.ListRequestsByStatus(status)
	if err != nil {
		b.log.Error("failed to list requests", zap.String("status", string(status)), zap.Error(err))
		b.reply(ev.ChatID, "Не удалось получить список заявок. Попробуйте позже.")
		return dialog.StateAdminMenu, nil
	}

	var rows [][]dialog.Button
	for _, req := range requests {
		if status == models.StatusPending && req.IsMileageInquiry() {
			continue
		}
		rows = append(rows, dialog.Row(dialog.Button{
			Label: fmt.Sprintf("%s | %s | %s", req.SubmitterName(), req.CarModel, req.CreatedAt.Format("02.01")),
			Data:  "admin_view_" + req.ID,
		}))
	}

	if len(rows) == 0 {
		b.replyButtons(ev.ChatID, heading+"\n\nЗаявок нет.", [][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	rows = append(rows, backRow("admin_menu"))
	b.replyButtons(ev.ChatID, heading, rows)
	return dialog.StateAdminMenu, nil
}

func (b *Bot) listMileageRequests(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	requests, err := b.store.ListRequestsByStatus(models.StatusPending)
	if err != nil {
		b.log.Error("failed to list mileage requests", zap.Error(err))
		b.reply(ev.ChatID, "Не удалось получить список запросов. Попробуйте позже.")
		return dialog.StateAdminMenu, nil
	}

	var rows [][]dialog.Button
	for _, req := range requests {
		if !req.IsMileageInquiry() {
			continue
		}
		rows = append(rows, dialog.Row(dialog.Button{
			Label: fmt.Sprintf("%s | %s | %s", req.SubmitterName(), req.CarModel, req.CreatedAt.Format("02.01")),
			Data:  "admin_view_" + req.ID,
		}))
	}

	if len(rows) == 0 {
		b.replyButtons(ev.ChatID, "📊 Запросы о пробеге:\n\nНеобработанных запросов нет.",
			[][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	rows = append(rows, backRow("admin_menu"))
	b.replyButtons(ev.ChatID, "📊 Запросы о пробеге:", rows)
	return dialog.StateAdminMenu, nil
}

// adminViewRequest opens the admin detail card. It accepts both the menu
// payload and the one attached to creation notifications, so an admin can
// jump straight from the push message.
func (b *Bot) adminViewRequest(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !b.isAdmin(ev.UserID) {
		b.reply(ev.ChatID, "Эта функция доступна только администраторам.")
		return b.showMainMenu(ev, sess)
	}

	id := strings.TrimPrefix(ev.Payload, "admin_view_")
	id = strings.TrimPrefix(id, "notification_view_")

	req, err := b.store.GetRequest(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.Error("request lookup failed", zap.String("request_id", id), zap.Error(err))
		}
		b.replyButtons(ev.ChatID, "Заявка не найдена. Возможно, она была удалена.",
			[][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	text, buttons := adminRequestDetail(req, b.ownerName(req), true)
	b.replyButtons(ev.ChatID, text, buttons)
	return dialog.StateAdminMenu, nil
}

func (b *Bot) ownerName(req *models.ServiceRequest) string {
	if user, err := b.store.GetUser(req.UserID); err == nil {
		return user.FullName()
	}
	return req.SubmitterName()
}

// splitAction parses an action payload of the form "<action>_<request id>".
func splitAction(payload string) (workflow.Action, string, bool) {
	for _, action := range []workflow.Action{
		workflow.ActionApprove,
		workflow.ActionReject,
		workflow.ActionComplete,
		workflow.ActionDelete,
		workflow.ActionComment,
	} {
		prefix := string(action) + "_"
		if strings.HasPrefix(payload, prefix) {
			return action, strings.TrimPrefix(payload, prefix), true
		}
	}
	return "", "", false
}

var actionPrompts = map[workflow.Action]string{
	workflow.ActionApprove:  "Вы собираетесь ПРИНЯТЬ ЗАЯВКУ В РАБОТУ.",
	workflow.ActionReject:   "Вы собираетесь ОТКЛОНИТЬ ЗАЯВКУ.",
	workflow.ActionComplete: "Вы собираетесь ОТМЕТИТЬ ЗАЯВКУ ВЫПОЛНЕННОЙ.",
	workflow.ActionComment:  "Вы собираетесь ДОБАВИТЬ КОММЕНТАРИЙ К ЗАЯВКЕ.",
}

// adminPromptNote starts an action. Deletion applies immediately; the other
// actions first collect an optional client-facing note.
func (b *Bot) adminPromptNote(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !b.isAdmin(ev.UserID) {
		b.reply(ev.ChatID, "Эта функция доступна только администраторам.")
		return b.showMainMenu(ev, sess)
	}

	action, id, ok := splitAction(ev.Payload)
	if !ok {
		b.log.Warn("unparseable action payload", zap.String("payload", ev.Payload))
		return dialog.StateAdminMenu, nil
	}

	if action == workflow.ActionDelete {
		return b.applyPendingAction(ev, sess, action, id, "")
	}

	sess.PendingAction = string(action)
	sess.PendingRequestID = id

	b.replyButtons(ev.ChatID,
		actionPrompts[action]+"\nВведите комментарий для клиента (или /skip чтобы пропустить):",
		[][]dialog.Button{
			dialog.Row(dialog.Button{Label: "➡️ Без комментария", Data: "no_comment_" + id}),
			dialog.Row(dialog.Button{Label: "🔙 Отмена", Data: "admin_view_" + id}),
		})
	return dialog.StateAdminNote, nil
}

// adminApplyNote consumes the typed note (or /skip) for the pending action.
func (b *Bot) adminApplyNote(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	note := strings.TrimSpace(ev.Text)
	if ev.Kind == dialog.KindCommand && ev.Command == "skip" {
		note = ""
	}
	return b.applyPendingAction(ev, sess, workflow.Action(sess.PendingAction), sess.PendingRequestID, note)
}

func (b *Bot) adminApplyNoComment(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	return b.applyPendingAction(ev, sess, workflow.Action(sess.PendingAction), sess.PendingRequestID, "")
}

var actionAcks = map[workflow.Action]string{
	workflow.ActionApprove:  "✅ Заявка принята в работу.",
	workflow.ActionReject:   "❌ Заявка отклонена.",
	workflow.ActionComplete: "🏁 Заявка помечена как выполненная.",
	workflow.ActionDelete:   "🗑️ Заявка полностью удалена из системы.",
	workflow.ActionComment:  "📝 Комментарий добавлен.",
}

func (b *Bot) applyPendingAction(ev dialog.Event, sess *dialog.Session, action workflow.Action, id, note string) (dialog.State, error) {
	sess.PendingAction = ""
	sess.PendingRequestID = ""

	if id == "" {
		b.replyButtons(ev.ChatID, "Действие не найдено. Выберите заявку заново.",
			[][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	req, err := b.flow.Apply(id, action, note)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			b.reply(ev.ChatID, "⚠️ Это действие недоступно для текущего статуса заявки.")
		case errors.Is(err, store.ErrNotFound):
			b.reply(ev.ChatID, "Заявка не найдена. Возможно, она была удалена.")
		default:
			b.log.Error("admin action failed",
				zap.String("action", string(action)),
				zap.String("request_id", id),
				zap.Error(err),
			)
			b.reply(ev.ChatID, "Не удалось выполнить действие. Попробуйте позже.")
		}
		return dialog.StateAdminMenu, nil
	}

	b.reply(ev.ChatID, actionAcks[action])

	if action == workflow.ActionDelete {
		return b.showAdminMenu(ev, sess)
	}

	text, buttons := adminRequestDetail(req, b.ownerName(req), true)
	b.replyButtons(ev.ChatID, text, buttons)
	return dialog.StateAdminMenu, nil
}

func (b *Bot) rejectMileage(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !b.isAdmin(ev.UserID) {
		b.reply(ev.ChatID, "Эта функция доступна только администраторам.")
		return b.showMainMenu(ev, sess)
	}

	id := strings.TrimPrefix(ev.Payload, "reject_mileage_")

	req, err := b.flow.RejectMileage(id)
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			b.reply(ev.ChatID, "⚠️ Запрос уже обработан.")
		case errors.Is(err, store.ErrNotFound):
			b.reply(ev.ChatID, "Запрос не найден. Возможно, он был удалён.")
		default:
			b.log.Error("mileage rejection failed", zap.String("request_id", id), zap.Error(err))
			b.reply(ev.ChatID, "Не удалось выполнить действие. Попробуйте позже.")
		}
		return dialog.StateAdminMenu, nil
	}

	b.replyButtons(ev.ChatID,
		fmt.Sprintf("❌ Запрос о пробеге для %s (%s) отклонён. Клиент уведомлён.", req.CarModel, req.LicensePlate),
		[][]dialog.Button{backRow("admin_menu")})
	return dialog.StateAdminMenu, nil
}

func (b *Bot) promptMileageAnswer(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !b.isAdmin(ev.UserID) {
		b.reply(ev.ChatID, "Эта функция доступна только администраторам.")
		return b.showMainMenu(ev, sess)
	}

	id := strings.TrimPrefix(ev.Payload, "mileage_response_")

	req, err := b.store.GetRequest(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.Error("request lookup failed", zap.String("request_id", id), zap.Error(err))
		}
		b.replyButtons(ev.ChatID, "Запрос не найден. Возможно, он был удалён.",
			[][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	sess.AnswerRequestID = req.ID
	b.replyButtons(ev.ChatID,
		fmt.Sprintf("📊 Ответ на запрос о пробеге\n\n🚗 %s\n🔢 %s\n\n"+
			"Введите информацию о пробеге предыдущего ТО (текст будет отправлен клиенту):",
			req.CarModel, req.LicensePlate),
		[][]dialog.Button{dialog.Row(dialog.Button{Label: "🔙 Отмена", Data: "admin_view_" + req.ID})})
	return dialog.StateMileageAnswer, nil
}

func (b *Bot) saveMileageAnswer(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	id := sess.AnswerRequestID
	sess.AnswerRequestID = ""

	if id == "" {
		b.replyButtons(ev.ChatID, "Запрос не найден. Выберите его заново.",
			[][]dialog.Button{backRow("admin_menu")})
		return dialog.StateAdminMenu, nil
	}

	_, err := b.flow.AnswerMileage(id, strings.TrimSpace(ev.Text))
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrInvalidTransition):
			b.reply(ev.ChatID, "⚠️ Запрос уже обработан.")
		case errors.Is(err, store.ErrNotFound):
			b.reply(ev.ChatID, "Запрос не найден. Возможно, он был удалён.")
		default:
			b.log.Error("mileage answer failed", zap.String("request_id", id), zap.Error(err))
			b.reply(ev.ChatID, "Не удалось отправить ответ. Попробуйте позже.")
		}
		return dialog.StateAdminMenu, nil
	}

	b.replyButtons(ev.ChatID, "✅ Ответ отправлен клиенту.", [][]dialog.Button{backRow("admin_menu")})
	return dialog.StateAdminMenu, nil
}
