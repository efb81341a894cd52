package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"timetable-backend/internal/model"
	"timetable-backend/internal/timetable"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidRecord wraps validation failures of incoming slots and breaks.
	ErrInvalidRecord = errors.New("invalid record")
)

// Store defines the interface for all database operations.
type Store interface {
	LoadWeekSchedule(ctx context.Context) (timetable.WeekSchedule, error)

	ListSlots(ctx context.Context) ([]model.ClassSlot, error)
	CreateSlot(ctx context.Context, slot *model.ClassSlot) error
	UpdateSlot(ctx context.Context, slot *model.ClassSlot) error
	DeleteSlot(ctx context.Context, id int64) error

	ListBreaks(ctx context.Context) ([]model.Break, error)
	CreateBreak(ctx context.Context, b *model.Break) error
	DeleteBreak(ctx context.Context, id int64) error

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, log *zap.Logger) Store {
	return &gormStore{db: db, log: log}
}

// LoadWeekSchedule reads every slot and break and assembles a fresh
// WeekSchedule. Rows that no longer validate are skipped and logged so one
// bad row cannot blank the whole timetable.
func (s *gormStore) LoadWeekSchedule(ctx context.Context) (timetable.WeekSchedule, error) {
	rows, err := s.ListSlots(ctx)
	if err != nil {
		return timetable.WeekSchedule{}, fmt.Errorf("failed to load slots: %w", err)
	}
	breakRows, err := s.ListBreaks(ctx)
	if err != nil {
		return timetable.WeekSchedule{}, fmt.Errorf("failed to load breaks: %w", err)
	}

	slots := make([]timetable.ClassSlot, 0, len(rows))
	for _, row := range rows {
		slot, err := ToClassSlot(row)
		if err != nil {
			s.log.Warn("skipping invalid class slot", zap.Int64("slot_id", row.ID), zap.Error(err))
			continue
		}
		slots = append(slots, slot)
	}

	breaks := make([]timetable.Break, 0, len(breakRows))
	for _, row := range breakRows {
		b, err := ToBreak(row)
		if err != nil {
			s.log.Warn("skipping invalid break", zap.Int64("break_id", row.ID), zap.Error(err))
			continue
		}
		breaks = append(breaks, b)
	}

	return timetable.NewWeekSchedule(slots, breaks)
}

func (s *gormStore) ListSlots(ctx context.Context) ([]model.ClassSlot, error) {
	var slots []model.ClassSlot
	if err := s.db.WithContext(ctx).Order("day, start_time, id").Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// CreateSlot validates and inserts slot, normalizing its times to "HH:MM".
func (s *gormStore) CreateSlot(ctx context.Context, slot *model.ClassSlot) error {
	if err := normalizeSlot(slot); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		return fmt.Errorf("failed to create class slot: %w", err)
	}
	return nil
}

// UpdateSlot replaces every editable column of the slot with slot.ID.
func (s *gormStore) UpdateSlot(ctx context.Context, slot *model.ClassSlot) error {
	if err := normalizeSlot(slot); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&model.ClassSlot{ID: slot.ID}).
		Select("day", "start_time", "end_time", "subject", "teacher", "room").
		Updates(slot)
	if res.Error != nil {
		return fmt.Errorf("failed to update class slot %d: %w", slot.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("class slot %d: %w", slot.ID, ErrNotFound)
	}
	return nil
}

func (s *gormStore) DeleteSlot(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.ClassSlot{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete class slot %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("class slot %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *gormStore) ListBreaks(ctx context.Context) ([]model.Break, error) {
	var breaks []model.Break
	if err := s.db.WithContext(ctx).Order("start_time, id").Find(&breaks).Error; err != nil {
		return nil, err
	}
	return breaks, nil
}

func (s *gormStore) CreateBreak(ctx context.Context, b *model.Break) error {
	if err := normalizeBreak(b); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create break: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteBreak(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Break{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete break %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("break %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertSubscription creates the subscription or refreshes its keys.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
