package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	logx "econalert/pkg/logx"

	tele "gopkg.in/telebot.v4"

	kit "econalert/internal/transport"
)

// Config configures the Telegram sink.
type Config struct {
	Token string
	// APIURL overrides https://api.telegram.org (tests, local Bot API servers).
	APIURL  string
	Timeout time.Duration
}

// Adapter sends messages through the Telegram Bot API. It only sends; it
// never polls for updates.
type Adapter struct {
	cfg Config
	log logx.Logger
	bot *tele.Bot
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		URL:   strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		Token: cfg.Token,
		// Offline skips the getMe round trip; a send-only sink doesn't need it.
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Adapter{cfg: cfg, log: log, bot: b}, nil
}

// recipient lets both numeric ids and @usernames address a chat.
type recipient string

func (r recipient) Recipient() string { return string(r) }

const telegramTextLimit = 4000

// splitText cuts s into chunks of at most limit runes, preferring to break
// after a newline in the last two thirds of a window. Alerts are plain text,
// so any rune boundary is a safe cut.
func splitText(s string, limit int) []string {
	if limit <= 0 {
		limit = telegramTextLimit
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return []string{s}
	}

	out := make([]string, 0, (len(rs)+limit-1)/limit)
	for start := 0; start < len(rs); {
		end := min(start+limit, len(rs))
		if end < len(rs) {
			for i := end - 1; i-start >= limit/3; i-- {
				if rs[i] == '\n' {
					end = i + 1
					break
				}
			}
		}
		out = append(out, strings.TrimRight(string(rs[start:end]), "\n"))
		start = end
		for start < len(rs) && rs[start] == '\n' {
			start++
		}
	}
	return out
}

// SendText delivers text as one or more messages. It makes a single attempt
// per chunk and stops at the first failure.
func (a *Adapter) SendText(ctx context.Context, to kit.ChatTarget, text string, opt *kit.SendOptions) (kit.MessageRef, error) {
	if opt == nil {
		opt = &kit.SendOptions{}
	}
	chatID := strings.TrimSpace(to.ChatID)
	if chatID == "" {
		return kit.MessageRef{}, errors.New("telegram chat id is empty")
	}

	chunks := splitText(text, telegramTextLimit)

	var first kit.MessageRef
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return first, err
		}

		msg, err := a.bot.Send(recipient(chatID), chunk, &tele.SendOptions{
			DisableWebPagePreview: opt.DisablePreview,
			ThreadID:              to.ThreadID,
		})
		if err != nil {
			return first, err
		}
		if i == 0 && msg != nil {
			first = kit.MessageRef{ChatID: chatID, ThreadID: to.ThreadID, MessageID: msg.ID}
		}
	}

	a.log.Debug("message sent", logx.String("chat", chatID), logx.Int("chunks", len(chunks)), logx.Int("message_id", first.MessageID))
	return first, nil
}
