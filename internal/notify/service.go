package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/redis/go-redis/v9"

	"prizedraw/internal/logger"
	"prizedraw/internal/metrics"
)

const queueKey = "winner_events"

// Dispatcher receives winner-finalized events. Delivery guarantees are the
// dispatcher's own concern; callers fire and forget.
type Dispatcher interface {
	WinnerFinalized(ctx context.Context, giveawayID, winnerID int, title string, amountCents int64)
}

// Recipients resolves a user ID to a deliverable address.
type Recipients interface {
	Lookup(ctx context.Context, userID int) (email, name string, err error)
}

type Event struct {
	GiveawayID  int       `json:"giveaway_id"`
	WinnerID    int       `json:"winner_id"`
	Title       string    `json:"title"`
	AmountCents int64     `json:"amount_cents"`
	Tries       int       `json:"tries"`
	Created     time.Time `json:"created"`
}

type Service struct {
	redis      *redis.Client
	recipients Recipients
	from       string
	fromName   string
	smtpHost   string
	smtpPort   string
	smtpUser   string
	smtpPass   string
}

func New(rdb *redis.Client, recipients Recipients, fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass string) *Service {
	return &Service{
		redis:      rdb,
		recipients: recipients,
		from:       fromEmail,
		fromName:   fromName,
		smtpHost:   smtpHost,
		smtpPort:   smtpPort,
		smtpUser:   smtpUser,
		smtpPass:   smtpPass,
	}
}

// WinnerFinalized queues the event. Errors are logged, never returned:
// notification failure must not fail a finalize.
func (s *Service) WinnerFinalized(ctx context.Context, giveawayID, winnerID int, title string, amountCents int64) {
	ev := Event{
		GiveawayID:  giveawayID,
		WinnerID:    winnerID,
		Title:       title,
		AmountCents: amountCents,
		Created:     time.Now(),
	}

	data, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf("Failed to marshal winner event: %v", err)
		return
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue winner event for giveaway %d: %v", giveawayID, err)
		return
	}

	logger.Info("Winner event queued", "giveaway_id", giveawayID, "winner_id", winnerID)
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Winner notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Winner notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var ev Event
	if err := json.Unmarshal([]byte(result[1]), &ev); err != nil {
		logger.Errorf("Bad winner event data: %v", err)
		return
	}

	ev.Tries++
	if err := s.deliver(ctx, ev); err != nil {
		logger.Errorf("Failed to notify winner %d for giveaway %d: %v", ev.WinnerID, ev.GiveawayID, err)
		metrics.RecordNotification("failed")

		if ev.Tries < 3 {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(ev)
			s.redis.LPush(context.Background(), queueKey, data)
		} else {
			s.saveFailed(ev, err)
		}
		return
	}

	metrics.RecordNotification("sent")
}

func (s *Service) deliver(ctx context.Context, ev Event) error {
	email, name, err := s.recipients.Lookup(ctx, ev.WinnerID)
	if err != nil {
		return fmt.Errorf("resolve winner %d: %w", ev.WinnerID, err)
	}

	subject := fmt.Sprintf("You won %q!", ev.Title)
	body := fmt.Sprintf("Hi %s,\r\n\r\nYou were selected as the winner of %q. %.2f has been credited to your wallet.\r\n",
		name, ev.Title, float64(ev.AmountCents)/100)

	return s.sendNow(email, name, subject, body)
}

func (s *Service) sendNow(to, name, subject, body string) error {
	if s.smtpHost == "" {
		logger.Info("SMTP not configured, skipping delivery", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\n\r\n%s",
		s.fromName, s.from, name, to, subject, body)

	addr := s.smtpHost + ":" + s.smtpPort
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	return smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg))
}

func (s *Service) saveFailed(ev Event, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, _ := json.Marshal(ev)
	if err := s.redis.LPush(ctx, queueKey+":failed", data).Err(); err != nil {
		logger.Errorf("Failed to park dead winner event: %v (cause: %v)", err, cause)
	}
}

// Nop discards events; used where no notification channel is configured.
type Nop struct{}

func (Nop) WinnerFinalized(context.Context, int, int, string, int64) {}
