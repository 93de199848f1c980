package bot

import (
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/config"
	"github.com/carhaus/autoservice-bot/internal/dialog"
	"github.com/carhaus/autoservice-bot/internal/store"
	"github.com/carhaus/autoservice-bot/internal/workflow"
)

// Bot ties the Telegram transport to the conversation engine and the request
// workflow. All outbound traffic goes through its Sender implementation.
type Bot struct {
	api      *tgbotapi.BotAPI
	sender   dialog.Sender
	store    store.Store
	sessions *dialog.Sessions
	engine   *dialog.Engine
	flow     *workflow.Manager
	cfg      *config.Config
	log      *zap.Logger

	mu      sync.Mutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// New connects to the Telegram API and assembles the bot.
func New(cfg *config.Config, st store.Store, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	log.Info("authorized", zap.String("account", api.Self.UserName))

	b := newBot(cfg, st, nil, log)
	b.api = api
	return b, nil
}

// newBot wires the engine and workflow without touching the network. A nil
// sender means the bot delivers through its own Telegram API client.
func newBot(cfg *config.Config, st store.Store, sender dialog.Sender, log *zap.Logger) *Bot {
	b := &Bot{
		store:    st,
		sessions: dialog.NewSessions(),
		cfg:      cfg,
		log:      log,
	}
	if sender == nil {
		sender = b
	}
	b.sender = sender
	b.flow = workflow.New(st, sender, cfg.AdminIDs, cfg.MileageAdminID, log)
	b.engine = dialog.NewEngine(b.sessions, log)
	b.registerRoutes(b.engine)
	return b
}

// Start begins long polling. Each update is handled on its own goroutine so a
// slow store call never blocks the poll loop.
func (b *Bot) Start() error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return errors.New("bot already running")
	}
	b.running = true
	b.done = make(chan struct{})
	b.mu.Unlock()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-b.done:
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				b.wg.Add(1)
				go func(update tgbotapi.Update) {
					defer b.wg.Done()
					b.handle(update)
				}(update)
			}
		}
	}()

	b.log.Info("bot started")
	return nil
}

// Stop halts polling and waits for in-flight handlers to finish.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.done)
	b.mu.Unlock()

	b.api.StopReceivingUpdates()
	b.wg.Wait()
	b.log.Info("bot stopped")
}

func (b *Bot) handle(update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		// Acknowledge immediately so the client stops its spinner.
		if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
			b.log.Warn("failed to answer callback", zap.Error(err))
		}
	}

	ev, ok := eventFrom(update)
	if !ok {
		return
	}
	b.engine.Dispatch(ev)
}

// eventFrom converts a raw Telegram update into a typed engine event.
func eventFrom(update tgbotapi.Update) (dialog.Event, bool) {
	if cq := update.CallbackQuery; cq != nil && cq.Message != nil {
		return dialog.Event{
			Kind:      dialog.KindCallback,
			UserID:    cq.From.ID,
			ChatID:    cq.Message.Chat.ID,
			Payload:   cq.Data,
			FirstName: cq.From.FirstName,
			LastName:  cq.From.LastName,
			Username:  cq.From.UserName,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return dialog.Event{}, false
	}

	ev := dialog.Event{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.UserName,
	}

	switch {
	case msg.Contact != nil:
		ev.Kind = dialog.KindContact
		ev.Phone = msg.Contact.PhoneNumber
	case msg.IsCommand():
		ev.Kind = dialog.KindCommand
		ev.Command = msg.Command()
		ev.Text = msg.CommandArguments()
	default:
		ev.Kind = dialog.KindText
		ev.Text = msg.Text
	}
	return ev, true
}

// Send delivers one outbound message, translating the transport-neutral
// keyboard directives into Telegram markup.
func (b *Bot) Send(out dialog.Outgoing) error {
	msg := tgbotapi.NewMessage(out.ChatID, out.Text)

	switch {
	case len(out.Buttons) > 0:
		var rows [][]tgbotapi.InlineKeyboardButton
		for _, row := range out.Buttons {
			var buttons []tgbotapi.InlineKeyboardButton
			for _, btn := range row {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
			}
			rows = append(rows, buttons)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	case out.RequestContact:
		msg.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButtonContact("Поделиться номером телефона"),
			),
		)
	case out.ShowMenuButton:
		keyboard := tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(mainMenuLabel)),
		)
		keyboard.ResizeKeyboard = true
		msg.ReplyMarkup = keyboard
	case out.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	}

	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Int64("chat_id", out.ChatID), zap.Error(err))
		return err
	}
	return nil
}

// reply and replyButtons are handler conveniences; delivery failures are
// logged inside the sender and never abort a conversation step.
func (b *Bot) reply(chatID int64, text string) {
	b.send(dialog.Outgoing{ChatID: chatID, Text: text})
}

func (b *Bot) replyButtons(chatID int64, text string, buttons [][]dialog.Button) {
	b.send(dialog.Outgoing{ChatID: chatID, Text: text, Buttons: buttons})
}

func (b *Bot) send(out dialog.Outgoing) {
	_ = b.sender.Send(out)
}
