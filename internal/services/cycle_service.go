package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
	"gorm.io/gorm"
)

type CycleUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateCycleSettings(userID uint, cycleLength int, periodLength int, lastPeriodStart *time.Time) error
	UpdateLastPeriodStart(userID uint, start time.Time) error
}

type CycleLogRepository interface {
	ListByUserRange(userID uint, from time.Time, toExclusive time.Time) ([]models.CycleLog, error)
	FindByUserAndDay(userID uint, day time.Time) (models.CycleLog, bool, error)
	LatestPeriodDayBefore(userID uint, day time.Time) (time.Time, bool, error)
	Save(entry *models.CycleLog) error
	DeleteByUserAndDay(userID uint, day time.Time) (bool, error)
}

type CycleSettings struct {
	CycleLength     int        `json:"cycle_length"`
	PeriodLength    int        `json:"period_length"`
	LastPeriodStart *time.Time `json:"-"`
}

type CycleSettingsInput struct {
	CycleLength        int
	PeriodLength       int
	LastPeriodStartRaw string
}

// CycleService stores every calendar day as UTC midnight and resolves "today"
// in the configured location.
type CycleService struct {
	users    CycleUserRepository
	logs     CycleLogRepository
	symptoms SymptomCatalog
	location *time.Location
	now      func() time.Time
}

func NewCycleService(users CycleUserRepository, logs CycleLogRepository, symptoms SymptomCatalog, location *time.Location) *CycleService {
	if location == nil {
		location = time.UTC
	}
	return &CycleService{users: users, logs: logs, symptoms: symptoms, location: location, now: time.Now}
}

func (service *CycleService) Settings(userID uint) (CycleSettings, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CycleSettings{}, ErrUserNotFound
	}
	if err != nil {
		return CycleSettings{}, fmt.Errorf("load user: %w", err)
	}
	return CycleSettings{
		CycleLength:     user.CycleLength,
		PeriodLength:    user.PeriodLength,
		LastPeriodStart: user.LastPeriodStart,
	}, nil
}

func (service *CycleService) UpdateSettings(userID uint, input CycleSettingsInput) (CycleSettings, error) {
	if !IsValidCycleLength(input.CycleLength) {
		return CycleSettings{}, ErrCycleLengthOutOfRange
	}
	if !IsValidPeriodLength(input.PeriodLength) {
		return CycleSettings{}, ErrPeriodLengthOutOfRange
	}

	settings := CycleSettings{CycleLength: input.CycleLength, PeriodLength: input.PeriodLength}
	if raw := strings.TrimSpace(input.LastPeriodStartRaw); raw != "" {
		day, err := ParseDay(raw, time.UTC)
		if err != nil {
			return CycleSettings{}, ErrCycleStartDateInvalid
		}
		if day.After(service.today()) {
			return CycleSettings{}, ErrCycleStartInFuture
		}
		settings.LastPeriodStart = &day
	}

	if err := service.users.UpdateCycleSettings(userID, settings.CycleLength, settings.PeriodLength, settings.LastPeriodStart); err != nil {
		return CycleSettings{}, fmt.Errorf("update cycle settings: %w", err)
	}
	return settings, nil
}

// Snapshot evaluates the stored reference point on the given calendar day, or
// on today when day is nil.
func (service *CycleService) Snapshot(userID uint, day *time.Time) (CycleSnapshot, error) {
	settings, err := service.Settings(userID)
	if err != nil {
		return CycleSnapshot{}, err
	}
	if settings.LastPeriodStart == nil {
		return CycleSnapshot{}, ErrCycleReferenceMissing
	}

	at := service.today()
	if day != nil {
		at = calendarDayUTC(*day)
	}
	reference := CycleReferencePoint{
		StartOfLastPeriod:      calendarDayUTC(*settings.LastPeriodStart),
		AverageCycleLengthDays: settings.CycleLength,
	}
	return reference.Snapshot(at)
}

func (service *CycleService) ListLogs(userID uint, fromRaw string, toRaw string) ([]models.CycleLog, error) {
	to := service.today()
	if strings.TrimSpace(toRaw) != "" {
		parsed, err := ParseDay(toRaw, time.UTC)
		if err != nil {
			return nil, ErrCycleLogRangeInvalid
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -defaultLogRangeDays)
	if strings.TrimSpace(fromRaw) != "" {
		parsed, err := ParseDay(fromRaw, time.UTC)
		if err != nil {
			return nil, ErrCycleLogRangeInvalid
		}
		from = parsed
	}
	if from.After(to) {
		return nil, ErrCycleLogRangeInvalid
	}
	return service.logs.ListByUserRange(userID, from, to.AddDate(0, 0, 1))
}

func (service *CycleService) SaveLog(userID uint, dayRaw string, input CycleLogInput) (models.CycleLog, error) {
	day, err := service.parseLogDay(dayRaw)
	if err != nil {
		return models.CycleLog{}, err
	}
	normalized, err := NormalizeCycleLogInput(input, service.symptoms)
	if err != nil {
		return models.CycleLog{}, err
	}

	entry, found, err := service.logs.FindByUserAndDay(userID, day)
	if err != nil {
		return models.CycleLog{}, fmt.Errorf("load cycle log: %w", err)
	}
	if !found {
		entry = models.CycleLog{UserID: userID, Date: day}
	}
	entry.LogType = normalized.LogType
	entry.IsPeriod = normalized.IsPeriod
	entry.Flow = normalized.Flow
	entry.Symptoms = normalized.Symptoms
	entry.Mood = normalized.Mood
	entry.Temperature = normalized.Temperature
	entry.Notes = normalized.Notes

	if err := service.logs.Save(&entry); err != nil {
		return models.CycleLog{}, fmt.Errorf("save cycle log: %w", err)
	}
	if entry.IsPeriod {
		if err := service.advanceCycleStart(userID, day); err != nil {
			return models.CycleLog{}, err
		}
	}
	return entry, nil
}

func (service *CycleService) DeleteLog(userID uint, dayRaw string) error {
	day, err := ParseDay(dayRaw, time.UTC)
	if err != nil {
		return ErrCycleLogDateInvalid
	}
	deleted, err := service.logs.DeleteByUserAndDay(userID, day)
	if err != nil {
		return fmt.Errorf("delete cycle log: %w", err)
	}
	if !deleted {
		return ErrCycleLogNotFound
	}
	return nil
}

// advanceCycleStart moves the reference point to day when the period log
// opens a new cycle: nothing bled in the previous cycleStartGapDays days.
func (service *CycleService) advanceCycleStart(userID uint, day time.Time) error {
	previous, found, err := service.logs.LatestPeriodDayBefore(userID, day)
	if err != nil {
		return fmt.Errorf("load previous period day: %w", err)
	}
	if found && calendarDaysBetween(previous, day, time.UTC) < cycleStartGapDays {
		return nil
	}

	settings, err := service.Settings(userID)
	if err != nil {
		return err
	}
	if settings.LastPeriodStart != nil && !day.After(calendarDayUTC(*settings.LastPeriodStart)) {
		return nil
	}
	if err := service.users.UpdateLastPeriodStart(userID, day); err != nil {
		return fmt.Errorf("update cycle start: %w", err)
	}
	return nil
}

func (service *CycleService) parseLogDay(raw string) (time.Time, error) {
	day, err := ParseDay(raw, time.UTC)
	if err != nil {
		return time.Time{}, ErrCycleLogDateInvalid
	}
	if day.After(service.today()) {
		return time.Time{}, ErrCycleLogDateInFuture
	}
	return day, nil
}

func (service *CycleService) today() time.Time {
	return calendarDayUTC(service.now().In(service.location))
}

// calendarDayUTC keeps the calendar date of value and drops its zone.
func calendarDayUTC(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
