package twofactor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/news-api/internal/domain"
)

// DefaultCodeTTL is how long an issued code stays valid when none is configured.
const DefaultCodeTTL = 5 * time.Minute

// Outcome is the internal reason behind a verification result. Callers
// outside this package only ever see accepted or rejected.
type Outcome int

const (
	OutcomeVerified Outcome = iota
	OutcomeNoCode
	OutcomeExpired
	OutcomeMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVerified:
		return "verified"
	case OutcomeNoCode:
		return "no_code"
	case OutcomeExpired:
		return "expired"
	case OutcomeMismatch:
		return "mismatch"
	}
	return "unknown"
}

// NotificationSender delivers a code to the contact address it is keyed by.
type NotificationSender interface {
	SendCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type codeGenerator interface {
	Generate() (string, error)
}

type Service interface {
	// IssueCode generates and stores a fresh code for identity, then sends it.
	// A send failure wraps domain.ErrDelivery; the stored code stays valid.
	IssueCode(ctx context.Context, identity string) error
	// VerifyCode reports whether submitted is the live code for identity and
	// consumes it when it is.
	VerifyCode(ctx context.Context, identity, submitted string) (bool, error)
	// Check is VerifyCode with the reason for the result.
	Check(ctx context.Context, identity, submitted string) (Outcome, error)
	// Clear drops any outstanding code for identity.
	Clear(ctx context.Context, identity string) error
}

type service struct {
	store     Store
	sender    NotificationSender
	generator codeGenerator
	ttl       time.Duration
	now       func() time.Time
	channel   string
}

type ServiceDeps struct {
	Store     Store
	Sender    NotificationSender
	Generator codeGenerator
	TTL       time.Duration
	// Now defaults to time.Now. It must agree with the clock used by Store.
	Now func() time.Time
	// Channel names the delivery channel in log lines ("email", "sms").
	Channel string
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		store:     deps.Store,
		sender:    deps.Sender,
		generator: deps.Generator,
		ttl:       deps.TTL,
		now:       deps.Now,
		channel:   deps.Channel,
	}
	if s.generator == nil {
		s.generator = NewGenerator(DefaultCodeLength)
	}
	if s.ttl <= 0 {
		s.ttl = DefaultCodeTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.channel == "" {
		s.channel = "email"
	}
	return s
}

func (s *service) IssueCode(ctx context.Context, identity string) error {
	code, err := s.generator.Generate()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, identity, code, s.ttl); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	if err := s.sender.SendCode(ctx, identity, code, s.ttl); err != nil {
		slog.Error("verification code delivery failed", "channel", s.channel, "identity", identity, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}
	slog.Info("verification code issued", "channel", s.channel, "identity", identity)
	return nil
}

func (s *service) VerifyCode(ctx context.Context, identity, submitted string) (bool, error) {
	outcome, err := s.Check(ctx, identity, submitted)
	if err != nil {
		return false, err
	}
	return outcome == OutcomeVerified, nil
}

func (s *service) Check(ctx context.Context, identity, submitted string) (Outcome, error) {
	rec, err := s.store.Get(ctx, identity)
	if errors.Is(err, domain.ErrNotFound) {
		return s.reject(identity, OutcomeNoCode), nil
	}
	if err != nil {
		return OutcomeNoCode, fmt.Errorf("load verification code: %w", err)
	}
	if rec.Expired(s.now()) {
		// Only drop the record we looked at; a concurrent IssueCode may have
		// replaced it with a live one.
		if _, err := s.store.RemoveIfMatch(ctx, rec); err != nil {
			slog.Warn("failed to remove expired verification code", "identity", identity, "err", err)
		}
		return s.reject(identity, OutcomeExpired), nil
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(submitted)) != 1 {
		return s.reject(identity, OutcomeMismatch), nil
	}
	consumed, err := s.store.RemoveIfMatch(ctx, rec)
	if err != nil {
		return OutcomeNoCode, fmt.Errorf("consume verification code: %w", err)
	}
	if !consumed {
		// Another request consumed or replaced the code first.
		return s.reject(identity, OutcomeNoCode), nil
	}
	return OutcomeVerified, nil
}

func (s *service) Clear(ctx context.Context, identity string) error {
	return s.store.Remove(ctx, identity)
}

func (s *service) reject(identity string, o Outcome) Outcome {
	slog.Debug("verification code rejected", "channel", s.channel, "identity", identity, "reason", o.String())
	return o
}
