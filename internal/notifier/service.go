package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	logx "econalert/pkg/logx"

	kit "econalert/internal/transport"

	"golang.org/x/time/rate"
)

var ErrEmpty = errors.New("notifier: empty message")

const (
	defaultTimeout     = 20 * time.Second
	defaultRatePerSec  = 1.0
	defaultHistorySize = 20
)

// Service sends alert texts through a kit.Sender.
//
// It is safe for concurrent use, though the run loop calls it sequentially.
type Service struct {
	cfg     Config
	sender  kit.Sender
	log     logx.Logger
	limiter *rate.Limiter

	hmu     sync.Mutex
	history []HistoryItem
}

func New(cfg Config, sender kit.Sender, log logx.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		cfg:     cfg,
		sender:  sender,
		log:     log,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

// Deliver sends text once. Any failure, including the deadline expiring
// while paced, is returned as *DeliveryError.
func (s *Service) Deliver(ctx context.Context, text string) error {
	chat := s.cfg.Target.ChatID
	if text == "" {
		return &DeliveryError{Chat: chat, Err: ErrEmpty}
	}

	sctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if err := s.limiter.Wait(sctx); err != nil {
		return &DeliveryError{Chat: chat, Err: err}
	}

	start := time.Now()
	ref, err := s.sender.SendText(sctx, s.cfg.Target, text, &kit.SendOptions{DisablePreview: s.cfg.DisablePreview})
	if err != nil {
		return &DeliveryError{Chat: chat, Err: err}
	}

	s.remember(HistoryItem{At: time.Now(), MessageID: ref.MessageID, Text: text})
	s.log.Debug("delivered", logx.String("chat", chat), logx.Int("message_id", ref.MessageID), logx.Duration("took", time.Since(start)))
	return nil
}

func (s *Service) remember(it HistoryItem) {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	s.history = append(s.history, it)
	if over := len(s.history) - s.cfg.HistorySize; over > 0 {
		s.history = append([]HistoryItem(nil), s.history[over:]...)
	}
}

// History returns the most recent deliveries, oldest first.
func (s *Service) History() []HistoryItem {
	s.hmu.Lock()
	defer s.hmu.Unlock()
	return append([]HistoryItem(nil), s.history...)
}
