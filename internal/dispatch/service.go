// Package dispatch implements the bulk newsletter send workflow: audience
// resolution across categories, manual emails and explicit selections,
// per-recipient template rendering, and fan-out delivery.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/distlock"
	"github.com/dnbdoctor/labelops/internal/pkg/logger"
)

var (
	// ErrNoRecipients means the request resolved to an empty audience.
	ErrNoRecipients = errors.New("no recipients to send to")
	// ErrEmptySubject means the subject was blank after trimming.
	ErrEmptySubject = errors.New("subject is required")
	// ErrEmptyMessage means the body was blank after trimming.
	ErrEmptyMessage = errors.New("message is required")
	// ErrSendInProgress means another bulk send holds the dispatch lock.
	ErrSendInProgress = errors.New("a newsletter send is already in progress")
)

// SubscriberDirectory is the slice of the subscriber service the dispatcher
// needs: audience expansion and post-send bookkeeping.
type SubscriberDirectory interface {
	ListByCategories(ctx context.Context, categoryIDs []string) ([]domain.Subscriber, error)
	RecordSend(ctx context.Context, ids []string) error
}

// SendRequest describes one bulk send.
type SendRequest struct {
	// Subscribers are explicitly selected recipients.
	Subscribers []domain.Subscriber `json:"subscribers"`
	// CategoryIDs expand to every sendable subscriber in those categories.
	CategoryIDs []string `json:"categoryIds"`
	// ManualText is free-form emails separated by commas, semicolons or
	// whitespace.
	ManualText string `json:"manualText"`

	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Template string `json:"template"`

	// Vars are extra interpolation tokens such as artist and track.
	Vars map[string]string `json:"vars"`
}

// SendResult summarizes a completed dispatch.
type SendResult struct {
	Message    string   `json:"message"`
	Recipients int      `json:"recipients"`
	Invalid    []string `json:"invalidEmails,omitempty"`
	Failed     int      `json:"failed,omitempty"`
}

// Dispatcher coordinates bulk sends. When a Redis client is provided, a
// distributed lock ensures only one send runs at a time across admin
// sessions.
type Dispatcher struct {
	directory   SubscriberDirectory
	sender      Sender
	renderer    *Renderer
	redis       *redis.Client
	lockTTL     time.Duration
	concurrency int
}

// NewDispatcher creates a dispatcher. redisClient may be nil to disable the
// send lock.
func NewDispatcher(directory SubscriberDirectory, sender Sender, redisClient *redis.Client, lockTTL time.Duration, concurrency int) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Dispatcher{
		directory:   directory,
		sender:      sender,
		renderer:    NewRenderer(),
		redis:       redisClient,
		lockTTL:     lockTTL,
		concurrency: concurrency,
	}
}

type recipient struct {
	email        string
	name         string
	subscriberID string
}

// Send resolves the audience, renders content per recipient, and fans out
// delivery. Subscriber send counters are bumped for every subscriber that
// was actually delivered to.
func (d *Dispatcher) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, ErrEmptySubject
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	recipients, invalid, err := d.resolveRecipients(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	if d.redis != nil {
		lock := distlock.New(d.redis, "newsletter:send", d.lockTTL)
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("send lock: %w", err)
		}
		if !ok {
			return nil, ErrSendInProgress
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	logger.Info("newsletter send starting",
		"recipients", len(recipients), "template", req.Template)

	var failed atomic.Int64
	sentIDs := make(chan string, len(recipients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, rcpt := range recipients {
		rcpt := rcpt
		g.Go(func() error {
			vars := map[string]any{
				"name":  rcpt.name,
				"email": rcpt.email,
			}
			if vars["name"] == "" {
				vars["name"] = "there"
			}
			for k, v := range req.Vars {
				vars[k] = v
			}

			renderedSubject, err := d.renderer.Render(subject, vars)
			if err != nil {
				return err
			}
			renderedBody, err := d.renderer.Render(message, vars)
			if err != nil {
				return err
			}

			if err := d.sender.Send(gctx, OutboundEmail{
				To:      rcpt.email,
				ToName:  rcpt.name,
				Subject: renderedSubject,
				Body:    renderedBody,
			}); err != nil {
				failed.Add(1)
				logger.Warn("newsletter send failed", "recipient", rcpt.email, "error", err)
				return nil
			}
			if rcpt.subscriberID != "" {
				sentIDs <- rcpt.subscriberID
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render newsletter: %w", err)
	}
	close(sentIDs)

	ids := make([]string, 0, len(recipients))
	for id := range sentIDs {
		ids = append(ids, id)
	}
	if err := d.directory.RecordSend(ctx, ids); err != nil {
		logger.Warn("recording send counters failed", "error", err)
	}

	delivered := len(recipients) - int(failed.Load())
	logger.Info("newsletter send finished",
		"delivered", delivered, "failed", failed.Load())

	return &SendResult{
		Message:    fmt.Sprintf("Newsletter sent to %d recipients", delivered),
		Recipients: delivered,
		Invalid:    invalid,
		Failed:     int(failed.Load()),
	}, nil
}

// resolveRecipients merges the three audience sources and dedups by
// normalized email. Explicit selections win over category expansion so the
// subscriber id is preserved for counter updates.
func (d *Dispatcher) resolveRecipients(ctx context.Context, req SendRequest) ([]recipient, []string, error) {
	byEmail := make(map[string]recipient)
	order := make([]string, 0)

	add := func(r recipient) {
		if _, ok := byEmail[r.email]; ok {
			return
		}
		byEmail[r.email] = r
		order = append(order, r.email)
	}

	for _, sub := range req.Subscribers {
		email := domain.NormalizeEmail(sub.Email)
		if email == "" {
			continue
		}
		add(recipient{email: email, name: sub.Name, subscriberID: sub.ID})
	}

	if len(req.CategoryIDs) > 0 {
		subs, err := d.directory.ListByCategories(ctx, req.CategoryIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("expand categories: %w", err)
		}
		for _, sub := range subs {
			add(recipient{email: domain.NormalizeEmail(sub.Email), name: sub.Name, subscriberID: sub.ID})
		}
	}

	valid, invalid := ParseManualEmails(req.ManualText)
	for _, email := range valid {
		add(recipient{email: email})
	}

	out := make([]recipient, 0, len(order))
	for _, email := range order {
		out = append(out, byEmail[email])
	}
	return out, invalid, nil
}
