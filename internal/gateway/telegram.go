package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rahul/meetprep/internal/meeting"
	"github.com/rahul/meetprep/internal/prep"
)

const telegramHelp = `Send a /prepare message with one field per line:

/prepare
company: CEMEX
objective: discuss kiln repair partnership
duration: 60
focus: downtime reduction
attendees:
Jane Doe - Plant Manager
John Roe - Maintenance Lead

Only company is required. Duration is 15 to 180 minutes in steps of 15.`

// Telegram caps a message at 4096 characters.
const telegramMaxMessage = 4096

var ErrNotPrepareCommand = errors.New("message is not a /prepare command")

var _ Messenger = (*TelegramGateway)(nil)

type TelegramGateway struct {
	Bot         *tgbotapi.BotAPI
	Preparer    Preparer
	Credentials prep.Credentials
}

func NewTelegramGateway(token string, p Preparer, creds prep.Credentials) (*TelegramGateway, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	return &TelegramGateway{
		Bot:         bot,
		Preparer:    p,
		Credentials: creds,
	}, nil
}

func (tg *TelegramGateway) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := tg.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			log.Printf("[%s] %s", update.Message.From.UserName, firstLine(update.Message.Text))

			chatID := strconv.FormatInt(update.Message.Chat.ID, 10)
			reply := tg.handle(ctx, update.Message.Text)
			if err := tg.Send(chatID, reply); err != nil {
				log.Printf("Error sending reply to %s: %v", chatID, err)
			}
		}
	}
}

func (tg *TelegramGateway) handle(ctx context.Context, text string) string {
	cmd := strings.TrimSpace(text)
	if strings.HasPrefix(cmd, "/help") || strings.HasPrefix(cmd, "/start") {
		return telegramHelp
	}

	req, err := ParsePrepareCommand(text)
	if errors.Is(err, ErrNotPrepareCommand) {
		return telegramHelp
	}
	if err != nil {
		return validationMessage(err)
	}

	if err := tg.Preparer.CheckCredentials(tg.Credentials); err != nil {
		return prep.MissingCredentialsWarning
	}

	out, err := tg.Preparer.Prepare(ctx, tg.Credentials, req)
	if err != nil {
		log.Printf("Error preparing meeting for %s: %v", req.CompanyName, err)
		return "Preparation failed, please try again later."
	}
	return out.Result.Output
}

// Send splits text into Telegram-sized chunks.
func (tg *TelegramGateway) Send(chatID string, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid chat ID: %s", chatID)
	}

	for _, chunk := range splitMessage(text, telegramMaxMessage) {
		msg := tgbotapi.NewMessage(id, chunk)
		if _, err := tg.Bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (tg *TelegramGateway) Stop() error {
	tg.Bot.StopReceivingUpdates()
	return nil
}

// ParsePrepareCommand reads a "/prepare" message of "key: value" lines.
// Lines after "attendees:" are attendee entries until the next known key.
func ParsePrepareCommand(text string) (meeting.Request, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	head := strings.Fields(strings.TrimSpace(lines[0]))
	if len(head) == 0 || !strings.HasPrefix(head[0], "/prepare") {
		return meeting.Request{}, ErrNotPrepareCommand
	}

	var company, objective, focus string
	var attendees []string
	duration := meeting.DefaultDuration
	inAttendees := false

	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := splitField(line)
		if !ok {
			if inAttendees {
				attendees = append(attendees, line)
			}
			continue
		}
		inAttendees = false
		switch key {
		case "company":
			company = value
		case "objective":
			objective = value
		case "focus":
			focus = value
		case "duration":
			d, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(value), " min"))
			if err != nil {
				return meeting.Request{}, meeting.ErrDurationOutOfRange
			}
			duration = d
		case "attendees":
			inAttendees = true
			if value != "" {
				attendees = append(attendees, value)
			}
		}
	}

	req := meeting.NewRequest(company, objective, meeting.ParseAttendees(strings.Join(attendees, "\n")), duration, focus)
	if err := meeting.Validate(req); err != nil {
		return meeting.Request{}, err
	}
	return req, nil
}

var commandKeys = map[string]string{
	"company":      "company",
	"company name": "company",
	"objective":    "objective",
	"duration":     "duration",
	"focus":        "focus",
	"focus areas":  "focus",
	"attendees":    "attendees",
}

func splitField(line string) (string, string, bool) {
	name, value, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key, ok := commandKeys[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func splitMessage(text string, limit int) []string {
	if text == "" {
		return []string{"(empty brief)"}
	}
	var chunks []string
	for utf8.RuneCountInString(text) > limit {
		runes := []rune(text)
		cut := limit
		if i := strings.LastIndex(string(runes[:limit]), "\n"); i > 0 {
			cut = utf8.RuneCountInString(string(runes[:limit])[:i])
		}
		chunks = append(chunks, string(runes[:cut]))
		text = strings.TrimLeft(string(runes[cut:]), "\n")
	}
	return append(chunks, text)
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
