package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/models"
)

// mainMenuLabel is the persistent reply-keyboard button that jumps to the
// main menu from any state.
const mainMenuLabel = "🏠 Главное меню"

// asapDate is the preferred-date placeholder for mileage inquiries, which
// skip the date step.
const asapDate = "В ближайшее время"

var statusLabels = map[models.RequestStatus]string{
	models.StatusPending:   "⏳ Ожидает рассмотрения",
	models.StatusApproved:  "✅ Принята в работу",
	models.StatusRejected:  "❌ Отклонена",
	models.StatusCompleted: "🏁 Выполнена",
}

func statusLabel(s models.RequestStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "❓ Неизвестно"
}

var statusEmojis = map[models.RequestStatus]string{
	models.StatusPending:   "⏳",
	models.StatusApproved:  "✅",
	models.StatusRejected:  "❌",
	models.StatusCompleted: "🏁",
}

func statusEmoji(s models.RequestStatus) string {
	if emoji, ok := statusEmojis[s]; ok {
		return emoji
	}
	return "❓"
}

func backRow(data string) []dialog.Button {
	return dialog.Row(dialog.Button{Label: "🔙 Назад", Data: data})
}

func mainMenuButtons(isAdmin bool) [][]dialog.Button {
	rows := [][]dialog.Button{
		dialog.Row(dialog.Button{Label: "📝 Создать заявку", Data: "new_request"}),
		dialog.Row(dialog.Button{Label: "🔍 Мои заявки", Data: "my_requests"}),
	}
	if isAdmin {
		rows = append(rows, dialog.Row(dialog.Button{Label: "👨‍💼 Администрирование", Data: "admin_menu"}))
	}
	return append(rows, dialog.Row(dialog.Button{Label: mainMenuLabel, Data: "main_menu"}))
}

func brandButtons() [][]dialog.Button {
	var rows [][]dialog.Button
	for _, brand := range models.BrandNames() {
		rows = append(rows, dialog.Row(dialog.Button{Label: brand, Data: "brand_" + brand}))
	}
	return append(rows, backRow("main_menu"))
}

func yearButtons() [][]dialog.Button {
	const perRow = 4
	var rows [][]dialog.Button
	var row []dialog.Button
	for _, year := range models.CarYears {
		row = append(row, dialog.Button{
			Label: fmt.Sprintf("%d", year),
			Data:  fmt.Sprintf("year_%d", year),
		})
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, backRow("new_request"))
}

// modelKey encodes a catalog model name into a callback payload; spaces are
// not allowed in payload separators so they become underscores.
func modelKey(model string) string {
	return strings.ReplaceAll(model, " ", "_")
}

// canonicalModel restores the catalog spelling for a payload-encoded model.
func canonicalModel(brand, key string) string {
	model := strings.ReplaceAll(key, "_", " ")
	for _, known := range models.CarBrands[brand] {
		if strings.EqualFold(known, model) {
			return known
		}
	}
	return model
}

func modelButtons(brand string) [][]dialog.Button {
	var rows [][]dialog.Button
	for _, model := range models.CarBrands[brand] {
		rows = append(rows, dialog.Row(dialog.Button{Label: model, Data: "model_" + modelKey(model)}))
	}
	rows = append(rows, dialog.Row(dialog.Button{Label: "Другая модель " + brand, Data: "model_other"}))
	return append(rows, backRow("new_request"))
}

func workTypeButtons() [][]dialog.Button {
	return [][]dialog.Button{
		dialog.Row(dialog.Button{Label: "🔧 Техническое обслуживание", Data: "work_type_to"}),
		dialog.Row(dialog.Button{Label: "🔍 Диагностика подвески", Data: "work_type_suspension"}),
		dialog.Row(dialog.Button{Label: "💻 Компьютерная диагностика", Data: "work_type_computer"}),
		dialog.Row(dialog.Button{Label: "📏 Развал-схождение", Data: "work_type_alignment"}),
		dialog.Row(dialog.Button{Label: "📊 Узнать пробег предыдущего техобслуживания", Data: "work_type_mileage_info"}),
		dialog.Row(dialog.Button{Label: "✏️ Другое (ввести вручную)", Data: "work_type_other"}),
		backRow("main_menu"),
	}
}

var workTypeByKey = map[string]string{
	"to":           models.WorkMaintenance,
	"suspension":   models.WorkSuspensionCheck,
	"computer":     models.WorkComputerDiagnostic,
	"alignment":    models.WorkWheelAlignment,
	"mileage_info": models.WorkMileageInfo,
}

var ruWeekdays = [...]string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// weekdayIndex converts time.Weekday (Sunday = 0) into a Monday-first index.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// availableDates lists the visit dates offered to the client: Tuesdays,
// Wednesdays and Thursdays within a 60-day window starting next Monday,
// capped at 18 entries.
func availableDates(now time.Time) []time.Time {
	days := 7 - weekdayIndex(now.Weekday())
	monday := now.AddDate(0, 0, days)

	var dates []time.Time
	for i := 0; i < 60 && len(dates) < 18; i++ {
		d := monday.AddDate(0, 0, i)
		switch d.Weekday() {
		case time.Tuesday, time.Wednesday, time.Thursday:
			dates = append(dates, d)
		}
	}
	return dates
}

func dateButtons(now time.Time) [][]dialog.Button {
	const perRow = 3
	var rows [][]dialog.Button
	var row []dialog.Button
	for _, d := range availableDates(now) {
		row = append(row, dialog.Button{
			Label: fmt.Sprintf("%s (%s)", d.Format("02.01"), ruWeekdays[weekdayIndex(d.Weekday())]),
			Data:  "date_" + d.Format("02.01.2006"),
		})
		if len(row) == perRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, backRow("main_menu"))
}

func datePrompt(heading string, now time.Time) (string, [][]dialog.Button) {
	text := heading + "\n\n" +
		"Выберите предпочтительную дату визита (вторник-четверг):\n" +
		"❗ Дата и время предварительные\n" +
		"❗ Менеджер свяжется с вами для подтверждения в ближайший понедельник"
	return text, dateButtons(now)
}

func confirmButtons() [][]dialog.Button {
	return [][]dialog.Button{dialog.Row(
		dialog.Button{Label: "✅ Подтвердить", Data: "confirm"},
		dialog.Button{Label: "❌ Отменить", Data: "cancel"},
	)}
}

// confirmationSummary renders the form recap shown before submission.
func confirmationSummary(form *dialog.Form) string {
	if form.RequestedWork == models.WorkMileageInfo {
		return fmt.Sprintf(
			"📋 Подтвердите информацию для заявки:\n\n"+
				"🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Текущий пробег: %d км\n🔧 Запрос: %s\n\n"+
				"Всё верно? Мы отправим запрос специалисту, и вы получите ответ прямо в этом чате.",
			form.CarModel, form.LicensePlate, form.Mileage, form.RequestedWork)
	}
	return fmt.Sprintf(
		"📋 Подтвердите информацию для заявки:\n\n"+
			"🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Пробег: %d км\n🔧 Требуемые работы: %s\n"+
			"📅 Дата: %s (предварительно)\n"+
			"❗ Менеджер свяжется с вами для подтверждения в ближайший понедельник\n"+
			"📞 Телефон: %s\n\nВсё верно?",
		form.CarModel, form.LicensePlate, form.Mileage, form.RequestedWork,
		form.PreferredDate, form.Phone)
}

// clientRequestDetail renders a request for its owner.
func clientRequestDetail(req *models.ServiceRequest) (string, [][]dialog.Button) {
	var sb strings.Builder
	if req.IsMileageInquiry() {
		fmt.Fprintf(&sb, "📋 Запрос информации #%s...\n\n", req.ShortID())
		fmt.Fprintf(&sb, "Статус: %s\nСоздан: %s\n\n", statusLabel(req.Status), req.CreatedAt.Format("02.01.2006 15:04"))
		fmt.Fprintf(&sb, "🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Текущий пробег: %d км\n", req.CarModel, req.LicensePlate, req.Mileage)
		sb.WriteString("🔍 Тип запроса: Информация о пробеге предыдущего ТО\n")
		if req.Status == models.StatusPending {
			sb.WriteString("\n⏳ Ваш запрос обрабатывается специалистом.\n")
		}
		if req.AdminNotes != "" {
			fmt.Fprintf(&sb, "\n📊 Информация о предыдущем ТО:\n%s\n", req.AdminNotes)
		}
	} else {
		fmt.Fprintf(&sb, "📋 Заявка #%s...\n\n", req.ShortID())
		fmt.Fprintf(&sb, "Статус: %s\nСоздана: %s\n\n", statusLabel(req.Status), req.CreatedAt.Format("02.01.2006 15:04"))
		fmt.Fprintf(&sb, "🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Пробег: %d км\n", req.CarModel, req.LicensePlate, req.Mileage)
		fmt.Fprintf(&sb, "🔧 Требуемые работы: %s\n📅 Желаемая дата: %s (предварительно)\n", req.RequestedWork, req.PreferredDate)
		sb.WriteString("⚠️ Менеджер свяжется с вами для подтверждения в ближайший понедельник\n")
		fmt.Fprintf(&sb, "📞 Телефон: %s\n", req.Phone)
		if req.AdminNotes != "" {
			fmt.Fprintf(&sb, "\n📝 Комментарий мастера:\n%s\n", req.AdminNotes)
		}
	}

	return sb.String(), [][]dialog.Button{
		dialog.Row(dialog.Button{Label: "🔙 Назад к заявкам", Data: "my_requests"}),
	}
}

// adminRequestDetail renders a request for an admin with the action buttons
// appropriate to its status and category. It is a pure function so handlers
// can re-render after an action without a synthetic event round-trip.
func adminRequestDetail(req *models.ServiceRequest, ownerName string, withActions bool) (string, [][]dialog.Button) {
	var sb strings.Builder
	if req.IsMileageInquiry() {
		fmt.Fprintf(&sb, "📊 Запрос информации о пробеге #%s...\n\n", req.ShortID())
		fmt.Fprintf(&sb, "Статус: %s\nСоздан: %s\nКлиент: %s\n\n",
			statusLabel(req.Status), req.CreatedAt.Format("02.01.2006 15:04"), ownerName)
		fmt.Fprintf(&sb, "🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Текущий пробег: %d км\n", req.CarModel, req.LicensePlate, req.Mileage)
		sb.WriteString("🔍 Тип запроса: Информация о пробеге предыдущего ТО\n")
		fmt.Fprintf(&sb, "📞 Телефон: %s\n", req.Phone)
	} else {
		fmt.Fprintf(&sb, "📋 Заявка #%s...\n\n", req.ShortID())
		fmt.Fprintf(&sb, "Статус: %s\nСоздана: %s\nКлиент: %s\n\n",
			statusLabel(req.Status), req.CreatedAt.Format("02.01.2006 15:04"), ownerName)
		fmt.Fprintf(&sb, "🚗 Автомобиль: %s\n🔢 Гос. номер: %s\n🔄 Пробег: %d км\n", req.CarModel, req.LicensePlate, req.Mileage)
		fmt.Fprintf(&sb, "🔧 Требуемые работы: %s\n📅 Желаемая дата: %s (предварительно)\n", req.RequestedWork, req.PreferredDate)
		sb.WriteString("⚠️ Необходимо связаться с клиентом в ближайший понедельник перед выбранной датой\n")
		fmt.Fprintf(&sb, "📞 Телефон: %s\n", req.Phone)
	}
	if req.AdminNotes != "" {
		fmt.Fprintf(&sb, "\n📝 Комментарий:\n%s\n", req.AdminNotes)
	}

	var rows [][]dialog.Button
	if withActions {
		switch {
		case req.IsMileageInquiry():
			if req.Status == models.StatusPending {
				rows = append(rows,
					dialog.Row(dialog.Button{Label: "📊 Ответить о пробеге", Data: "mileage_response_" + req.ID}),
					dialog.Row(dialog.Button{Label: "❌ Отклонить", Data: "reject_mileage_" + req.ID}),
				)
			}
		case req.Status == models.StatusPending:
			rows = append(rows,
				dialog.Row(
					dialog.Button{Label: "✅ Принять в работу", Data: "approve_" + req.ID},
					dialog.Button{Label: "❌ Отклонить", Data: "reject_" + req.ID},
				),
				dialog.Row(dialog.Button{Label: "📝 Добавить комментарий", Data: "comment_" + req.ID}),
			)
		case req.Status == models.StatusApproved:
			rows = append(rows,
				dialog.Row(
					dialog.Button{Label: "🏁 Выполнить", Data: "complete_" + req.ID},
					dialog.Button{Label: "❌ Отклонить", Data: "reject_" + req.ID},
				),
				dialog.Row(dialog.Button{Label: "📝 Добавить комментарий", Data: "comment_" + req.ID}),
			)
		case req.Status == models.StatusCompleted:
			rows = append(rows, dialog.Row(dialog.Button{Label: "🗑️ Удалить", Data: "delete_" + req.ID}))
		}
	}
	return sb.String(), append(rows, backRow("admin_menu"))
}
