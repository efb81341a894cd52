package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"timetable-backend/internal/model"
	"timetable-backend/internal/timetable"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the slice of the store the pool needs.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// Reminder announces that a class is about to start.
type Reminder struct {
	Slot     timetable.ClassSlot
	StartsAt time.Time
}

// Message is the human readable reminder text.
func (r Reminder) Message() string {
	msg := fmt.Sprintf("%s starts at %s", r.Slot.Subject, r.Slot.Interval.Start)
	if r.Slot.Room != "" {
		msg += " in " + r.Slot.Room
	}
	return msg
}

type reminderPayload struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	SlotID   int64     `json:"slot_id"`
	StartsAt time.Time `json:"starts_at"`
}

// Payload is the JSON body pushed to browsers.
func (r Reminder) Payload() ([]byte, error) {
	return json.Marshal(reminderPayload{
		Title:    "Next class",
		Body:     r.Message(),
		SlotID:   r.Slot.ID,
		StartsAt: r.StartsAt,
	})
}

// WorkerPool manages a pool of workers for sending reminders.
type WorkerPool struct {
	size    int
	jobs    chan Reminder
	store   SubscriptionStore
	webpush *webpush.Options
	sender  NotificationSender
	log     *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size, queueSize int, store SubscriptionStore, webpushOptions *webpush.Options, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize < size {
		queueSize = size
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Reminder, queueSize),
		store:   store,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.With(zap.Int("worker", id))
	log.Debug("worker started")
	for {
		select {
		case r := <-wp.jobs:
			log.Info("sending class reminder", zap.Int64("slot_id", r.Slot.ID), zap.Time("starts_at", r.StartsAt))
			wp.sendReminder(ctx, r)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// Dispatch queues a reminder. It drops the reminder instead of blocking the
// caller when the queue is full.
func (wp *WorkerPool) Dispatch(r Reminder) {
	select {
	case wp.jobs <- r:
	default:
		wp.log.Warn("reminder queue full, dropping reminder", zap.Int64("slot_id", r.Slot.ID))
	}
}

// Jobs exposes the reminder queue.
func (wp *WorkerPool) Jobs() chan Reminder {
	return wp.jobs
}

func (wp *WorkerPool) sendReminder(ctx context.Context, r Reminder) {
	subscriptions, err := wp.store.ListSubscriptions(ctx)
	if err != nil {
		wp.log.Error("failed to list subscriptions", zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := r.Payload()
	if err != nil {
		wp.log.Error("failed to encode reminder", zap.Error(err))
		return
	}

	wp.log.Info("sending reminders", zap.Int("subscriptions", len(subscriptions)), zap.Int64("slot_id", r.Slot.ID))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.Warn("failed to send notification", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Expired subscriptions answer 410 Gone.
	if resp.StatusCode == http.StatusGone {
		wp.log.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.log.Error("failed to delete expired subscription", zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
