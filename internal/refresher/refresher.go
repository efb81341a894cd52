package refresher

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"timetable-backend/config"
	"timetable-backend/internal/notification"
	"timetable-backend/internal/timetable"
)

// ScheduleLoader builds a fresh WeekSchedule from storage.
type ScheduleLoader interface {
	LoadWeekSchedule(ctx context.Context) (timetable.WeekSchedule, error)
}

// Dispatcher accepts reminders for delivery.
type Dispatcher interface {
	Dispatch(r notification.Reminder)
}

// Service keeps the latest WeekSchedule in memory. The schedule is rebuilt
// from storage on every tick and after every write, never patched in place.
type Service struct {
	cfg        config.ScheduleConfig
	loader     ScheduleLoader
	dispatcher Dispatcher
	loc        *time.Location
	log        *zap.Logger
	clock      func() time.Time

	mu       sync.RWMutex
	schedule timetable.WeekSchedule
	loadedAt time.Time
	onChange []func()

	// announced maps "slotID@start" to the start instant, so each class is
	// reminded once per occurrence.
	announced map[string]time.Time
}

// NewService creates the refresher. dispatcher may be nil, which disables reminders.
func NewService(cfg config.ScheduleConfig, loader ScheduleLoader, dispatcher Dispatcher, log *zap.Logger) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Minute
	}
	return &Service{
		cfg:        cfg,
		loader:     loader,
		dispatcher: dispatcher,
		loc:        loc,
		log:        log,
		clock:      time.Now,
		announced:  make(map[string]time.Time),
	}, nil
}

// Run refreshes immediately and then once per refresh interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("starting schedule refresher", zap.Duration("interval", s.cfg.RefreshInterval), zap.String("timezone", s.loc.String()))

	s.tick(ctx)

	timer := time.NewTimer(s.cfg.RefreshInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("schedule refresher shutting down")
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.cfg.RefreshInterval)
		}
	}
}

func (s *Service) tick(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.log.Error("failed to refresh schedule", zap.Error(err))
	}
	s.remind(s.Now())
}

// Refresh rebuilds the schedule from storage. On failure the previous
// schedule stays in place.
func (s *Service) Refresh(ctx context.Context) error {
	ws, err := s.loader.LoadWeekSchedule(ctx)
	if err != nil {
		return fmt.Errorf("failed to rebuild week schedule: %w", err)
	}

	s.mu.Lock()
	changed := !reflect.DeepEqual(s.schedule, ws)
	s.schedule = ws
	s.loadedAt = s.Now()
	hooks := slices.Clone(s.onChange)
	s.mu.Unlock()

	s.log.Debug("week schedule rebuilt", zap.Int("slots", ws.Len()), zap.Int("breaks", len(ws.Breaks)), zap.Bool("changed", changed))
	if changed {
		for _, fn := range hooks {
			fn()
		}
	}
	return nil
}

// OnChange registers fn to run after every refresh that produced a
// different schedule, including edits made directly in the database.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Snapshot returns the current schedule. The value is never mutated after
// it is published, so callers may read it without locking.
func (s *Service) Snapshot() timetable.WeekSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule
}

// LoadedAt is when the current snapshot was built; zero before the first refresh.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Location is the school's timezone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Now is the current instant in the school's timezone.
func (s *Service) Now() time.Time {
	return s.clock().In(s.loc)
}

// Resolve resolves the current snapshot at the given instant, converted to
// the school's timezone.
func (s *Service) Resolve(at time.Time) timetable.Result {
	return timetable.Resolve(s.Snapshot(), at.In(s.loc))
}

// remind dispatches a reminder when the next class starts within the lead
// time and has not been announced yet.
func (s *Service) remind(now time.Time) {
	lead := time.Duration(s.cfg.ReminderLeadMinutes) * time.Minute
	if s.dispatcher == nil || lead <= 0 {
		return
	}

	for key, startsAt := range s.announced {
		if !startsAt.After(now) {
			delete(s.announced, key)
		}
	}

	res := timetable.Resolve(s.Snapshot(), now)
	if res.Next == nil {
		return
	}

	startsAt := timetable.NextStart(*res.Next, now)
	if startsAt.Sub(now) > lead {
		return
	}

	key := fmt.Sprintf("%d@%s", res.Next.ID, startsAt.Format(time.RFC3339))
	if _, done := s.announced[key]; done {
		return
	}
	s.announced[key] = startsAt

	s.log.Info("dispatching class reminder", zap.Int64("slot_id", res.Next.ID), zap.String("subject", res.Next.Subject), zap.Time("starts_at", startsAt))
	s.dispatcher.Dispatch(notification.Reminder{Slot: *res.Next, StartsAt: startsAt})
}
