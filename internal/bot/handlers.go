package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/models"
	"github.com/carhaus/autoservice-bot/internal/store"
)

// handleStart greets a new user with the registration button, or shows the
// main menu to a registered one.
func (b *Bot) handleStart(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	_, err := b.store.GetUser(ev.UserID)
	if err == nil {
		return b.showMainMenu(ev, sess)
	}
	if !errors.Is(err, store.ErrNotFound) {
		b.log.Error("user lookup failed", zap.Int64("user_id", ev.UserID), zap.Error(err))
	}

	b.replyButtons(ev.ChatID,
		fmt.Sprintf("Здравствуйте, %s! Добро пожаловать в сервис автомастерской.\n"+
			"Для начала работы необходимо зарегистрироваться.", ev.FirstName),
		[][]dialog.Button{dialog.Row(dialog.Button{Label: "Зарегистрироваться", Data: "register"})})
	return dialog.StateStart, nil
}

func (b *Bot) askFirstName(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	b.reply(ev.ChatID, "Для регистрации нам нужна ваша контактная информация.\n\nПожалуйста, введите ваше имя:")
	return dialog.StateRegisterName, nil
}

func (b *Bot) saveFirstName(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.FirstName = strings.TrimSpace(ev.Text)
	b.reply(ev.ChatID, fmt.Sprintf("Спасибо, %s! Теперь, пожалуйста, введите вашу фамилию:", sess.Form.FirstName))
	return dialog.StateRegisterSurname, nil
}

func (b *Bot) saveSurname(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.LastName = strings.TrimSpace(ev.Text)
	b.send(dialog.Outgoing{
		ChatID:         ev.ChatID,
		Text:           "Пожалуйста, поделитесь своим номером телефона для завершения регистрации.",
		RequestContact: true,
	})
	return dialog.StateRegisterPhone, nil
}

// completeRegistration persists the user from the collected scratch fields
// plus the shared contact (or typed phone number).
func (b *Bot) completeRegistration(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	phone := ev.Phone
	if phone == "" {
		phone = strings.TrimSpace(ev.Text)
	}
	firstName := sess.Form.FirstName
	if firstName == "" {
		firstName = ev.FirstName
	}
	lastName := sess.Form.LastName
	if lastName == "" {
		lastName = ev.LastName
	}

	user := &models.User{
		TelegramID: ev.UserID,
		Username:   ev.Username,
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      phone,
		CreatedAt:  time.Now(),
	}
	if err := b.store.AddUser(user); err != nil {
		b.log.Error("failed to register user", zap.Int64("user_id", ev.UserID), zap.Error(err))
		b.reply(ev.ChatID, "Не удалось завершить регистрацию. Пожалуйста, попробуйте ещё раз.")
		return dialog.StateRegisterPhone, nil
	}

	b.reply(ev.ChatID, fmt.Sprintf("Спасибо за регистрацию, %s! Теперь вы можете пользоваться сервисом.", firstName))
	sess.Form.Reset()
	return b.showMainMenu(ev, sess)
}

func (b *Bot) showMainMenu(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	b.replyButtons(ev.ChatID, "Главное меню. Выберите действие:", mainMenuButtons(b.isAdmin(ev.UserID)))
	b.send(dialog.Outgoing{ChatID: ev.ChatID, Text: "🏠 Быстрый доступ к меню:", ShowMenuButton: true})
	return dialog.StateMainMenu, nil
}

// cancelConversation handles the universal /cancel command: the session is
// discarded and the user returns to the no-conversation state.
func (b *Bot) cancelConversation(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	b.reply(ev.ChatID, fmt.Sprintf("До свидания, %s! Надеемся увидеть вас снова.", ev.FirstName))
	b.sessions.Clear(ev.UserID)
	return dialog.StateIdle, nil
}

// --- service request form ---

func (b *Bot) startNewRequest(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	// A fresh attempt never inherits fields from an aborted one.
	sess.Form.Reset()
	b.replyButtons(ev.ChatID,
		"Создание новой заявки на обслуживание автомобиля\n\nВыберите марку вашего автомобиля:",
		brandButtons())
	return dialog.StateFormBrand, nil
}

func (b *Bot) chooseBrand(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	brand := strings.TrimPrefix(ev.Payload, "brand_")
	if _, ok := models.CarBrands[brand]; !ok {
		b.log.Warn("unknown brand payload", zap.String("payload", ev.Payload))
		return dialog.StateFormBrand, nil
	}
	sess.Form.Brand = brand

	b.replyButtons(ev.ChatID,
		fmt.Sprintf("Выбрана марка: %s\n\nТеперь выберите год выпуска вашего автомобиля:", brand),
		yearButtons())
	return dialog.StateFormYear, nil
}

func (b *Bot) chooseYear(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.Year = strings.TrimPrefix(ev.Payload, "year_")

	b.replyButtons(ev.ChatID,
		fmt.Sprintf("Выбрана марка: %s\nВыбран год: %s\n\nТеперь выберите модель автомобиля:",
			sess.Form.Brand, sess.Form.Year),
		modelButtons(sess.Form.Brand))
	return dialog.StateFormModel, nil
}

func (b *Bot) chooseModel(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	key := strings.TrimPrefix(ev.Payload, "model_")
	if key == "other" {
		b.reply(ev.ChatID, fmt.Sprintf("Выбрана марка: %s\nВыбран год: %s\n\nПожалуйста, введите модель вашего автомобиля:",
			sess.Form.Brand, sess.Form.Year))
		return dialog.StateFormModelManual, nil
	}

	sess.Form.Model = canonicalModel(sess.Form.Brand, key)
	sess.Form.CarModel = fmt.Sprintf("%s %s %s г.", sess.Form.Brand, sess.Form.Model, sess.Form.Year)

	b.reply(ev.ChatID, fmt.Sprintf("Автомобиль: %s\n\nТеперь введите государственный номер автомобиля:", sess.Form.CarModel))
	return dialog.StateFormPlate, nil
}

func (b *Bot) manualModel(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.Model = strings.TrimSpace(ev.Text)
	if sess.Form.Brand != "" && sess.Form.Year != "" {
		sess.Form.CarModel = fmt.Sprintf("%s %s %s г.", sess.Form.Brand, sess.Form.Model, sess.Form.Year)
	} else {
		sess.Form.CarModel = sess.Form.Model
	}

	b.reply(ev.ChatID, fmt.Sprintf("Автомобиль: %s\n\nТеперь введите государственный номер автомобиля:", sess.Form.CarModel))
	return dialog.StateFormPlate, nil
}

func (b *Bot) savePlate(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.LicensePlate = strings.TrimSpace(ev.Text)
	b.reply(ev.ChatID, fmt.Sprintf("Гос. номер: %s\n\nУкажите текущий пробег автомобиля (в километрах):", sess.Form.LicensePlate))
	return dialog.StateFormMileage, nil
}

// saveMileage validates the numeric field; invalid input re-prompts in the
// same state without losing previously collected fields.
func (b *Bot) saveMileage(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	mileage, err := strconv.Atoi(strings.TrimSpace(ev.Text))
	if err != nil {
		b.reply(ev.ChatID, "Пожалуйста, введите пробег в виде числа (только цифры).")
		return dialog.StateFormMileage, nil
	}
	sess.Form.Mileage = mileage
	sess.Form.MileageSet = true

	b.replyButtons(ev.ChatID,
		fmt.Sprintf("Пробег: %d км\n\nВыберите тип необходимых работ:", mileage),
		workTypeButtons())
	return dialog.StateFormWorkType, nil
}

func (b *Bot) chooseWorkType(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	key := strings.TrimPrefix(ev.Payload, "work_type_")
	if key == "other" {
		b.reply(ev.ChatID, "Пожалуйста, опишите, какие работы требуется выполнить:")
		return dialog.StateFormWorkManual, nil
	}

	work, ok := workTypeByKey[key]
	if !ok {
		b.log.Warn("unknown work type payload", zap.String("payload", ev.Payload))
		return dialog.StateFormWorkType, nil
	}
	sess.Form.RequestedWork = work

	// Mileage inquiries skip the date and phone steps entirely.
	if work == models.WorkMileageInfo {
		sess.Form.PreferredDate = asapDate
		sess.Form.Phone = "Не указан"
		if user, err := b.store.GetUser(ev.UserID); err == nil && user.Phone != "" {
			sess.Form.Phone = user.Phone
		}
		b.replyButtons(ev.ChatID, confirmationSummary(&sess.Form), confirmButtons())
		return dialog.StateFormConfirm, nil
	}

	text, buttons := datePrompt("Выбран тип работ: "+work, time.Now())
	b.replyButtons(ev.ChatID, text, buttons)
	return dialog.StateFormDate, nil
}

func (b *Bot) manualWork(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.RequestedWork = strings.TrimSpace(ev.Text)
	text, buttons := datePrompt("Вы ввели: "+sess.Form.RequestedWork, time.Now())
	b.replyButtons(ev.ChatID, text, buttons)
	return dialog.StateFormDate, nil
}

func (b *Bot) chooseDate(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.PreferredDate = strings.TrimPrefix(ev.Payload, "date_")

	user, err := b.store.GetUser(ev.UserID)
	if err == nil && user.Phone != "" {
		b.replyButtons(ev.ChatID,
			fmt.Sprintf("Выбрана дата: %s\n\n❗ Дата предварительная\n"+
				"❗ Менеджер свяжется с вами для подтверждения в ближайший понедельник\n\n"+
				"Выберите номер телефона для связи:", sess.Form.PreferredDate),
			[][]dialog.Button{
				dialog.Row(dialog.Button{Label: "Использовать номер: " + user.Phone, Data: "use_saved_phone"}),
				dialog.Row(dialog.Button{Label: "Ввести другой номер", Data: "enter_new_phone"}),
			})
		return dialog.StateFormPhoneChoice, nil
	}

	b.reply(ev.ChatID, fmt.Sprintf("Выбрана дата: %s\n\n❗ Дата предварительная\n"+
		"❗ Менеджер свяжется с вами для подтверждения в ближайший понедельник\n\n"+
		"Теперь введите ваш контактный телефон:", sess.Form.PreferredDate))
	return dialog.StateFormPhone, nil
}

func (b *Bot) choosePhone(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if ev.Payload == "use_saved_phone" {
		if user, err := b.store.GetUser(ev.UserID); err == nil && user.Phone != "" {
			sess.Form.Phone = user.Phone
			b.replyButtons(ev.ChatID, confirmationSummary(&sess.Form), confirmButtons())
			return dialog.StateFormConfirm, nil
		}
	}

	b.reply(ev.ChatID, "Пожалуйста, введите ваш контактный телефон:")
	return dialog.StateFormPhone, nil
}

func (b *Bot) savePhone(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	sess.Form.Phone = strings.TrimSpace(ev.Text)
	b.replyButtons(ev.ChatID, confirmationSummary(&sess.Form), confirmButtons())
	return dialog.StateFormConfirm, nil
}

// confirmRequest persists the request and fans out the creation
// notifications. A duplicate confirm after the form was cleared is a no-op,
// so replayed events cannot create a second request.
func (b *Bot) confirmRequest(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	if !sess.Form.Complete() {
		b.log.Info("ignoring confirm with empty form", zap.Int64("user_id", ev.UserID))
		return b.showMainMenu(ev, sess)
	}

	realName, realSurname := ev.FirstName, ev.LastName
	if user, err := b.store.GetUser(ev.UserID); err == nil {
		realName, realSurname = user.FirstName, user.LastName
	}

	req := models.NewServiceRequest(
		ev.UserID,
		sess.Form.CarModel,
		sess.Form.LicensePlate,
		sess.Form.Mileage,
		sess.Form.RequestedWork,
		sess.Form.PreferredDate,
		sess.Form.Phone,
		realName,
		realSurname,
	)
	if err := b.store.AddRequest(req); err != nil {
		b.log.Error("failed to create request", zap.Int64("user_id", ev.UserID), zap.Error(err))
		b.reply(ev.ChatID, "Не удалось создать заявку. Пожалуйста, попробуйте позже.")
		return b.showMainMenu(ev, sess)
	}

	if req.IsMileageInquiry() {
		b.reply(ev.ChatID, "✅ Ваша заявка успешно создана!\n\n"+
			"📊 Запрос о пробеге предыдущего ТО отправлен специалисту.\n"+
			"Ответ будет отправлен вам как только информация будет доступна.\n\n"+
			"Вы можете отслеживать статус вашей заявки в разделе 'Мои заявки'.")
	} else {
		b.reply(ev.ChatID, fmt.Sprintf("✅ Ваша заявка успешно создана!\n\n"+
			"📅 Предварительная дата: %s\n"+
			"❗ Менеджер свяжется с вами для подтверждения в ближайший понедельник.\n\n"+
			"Вы можете отслеживать статус вашей заявки в разделе 'Мои заявки'.", req.PreferredDate))
	}

	b.flow.NotifyCreated(req)
	sess.Form.Reset()
	return b.showMainMenu(ev, sess)
}

func (b *Bot) cancelForm(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	b.reply(ev.ChatID, "❌ Заявка отменена.")
	sess.Form.Reset()
	return b.showMainMenu(ev, sess)
}

// --- own requests ---

func (b *Bot) showMyRequests(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	requests, err := b.store.ListRequestsByUser(ev.UserID)
	if err != nil {
		b.log.Error("failed to list user requests", zap.Int64("user_id", ev.UserID), zap.Error(err))
		b.reply(ev.ChatID, "Не удалось получить список заявок. Попробуйте позже.")
		return dialog.StateMainMenu, nil
	}

	if len(requests) == 0 {
		b.replyButtons(ev.ChatID,
			"У вас пока нет заявок на обслуживание.\n\n"+
				"Нажмите кнопку 'Создать заявку' в главном меню, чтобы создать новую заявку.",
			[][]dialog.Button{backRow("main_menu")})
		return dialog.StateMainMenu, nil
	}

	var rows [][]dialog.Button
	for _, req := range requests {
		rows = append(rows, dialog.Row(dialog.Button{
			Label: fmt.Sprintf("%s %s (%s)", statusEmoji(req.Status), req.CarModel, req.CreatedAt.Format("02.01.2006")),
			Data:  "user_request_" + req.ID,
		}))
	}
	rows = append(rows, backRow("main_menu"))

	b.replyButtons(ev.ChatID, "Ваши заявки на обслуживание:", rows)
	return dialog.StateMyRequests, nil
}

func (b *Bot) showRequestDetails(ev dialog.Event, sess *dialog.Session) (dialog.State, error) {
	id := strings.TrimPrefix(ev.Payload, "user_request_")
	req, err := b.store.GetRequest(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			b.log.Error("request lookup failed", zap.String("request_id", id), zap.Error(err))
		}
		b.replyButtons(ev.ChatID, "Заявка не найдена.", [][]dialog.Button{backRow("my_requests")})
		return dialog.StateMyRequests, nil
	}

	text, buttons := clientRequestDetail(req)
	b.replyButtons(ev.ChatID, text, buttons)
	return dialog.StateMyRequests, nil
}
