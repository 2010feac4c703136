package services

import (
	"errors"
	"strings"

	"github.com/terraincognita07/nyinsen/internal/models"
)

const (
	MinCycleLength      = 15
	MaxCycleLength      = 90
	MinPeriodLength     = 1
	MaxPeriodLength     = 14
	MinTemperatureC     = 34.0
	MaxTemperatureC     = 43.0
	MaxCycleLogNotesLen = 1000
	cycleStartGapDays   = 5
	defaultLogRangeDays = 90
)

var (
	ErrCycleLengthOutOfRange         = errors.New("cycle length out of range")
	ErrPeriodLengthOutOfRange        = errors.New("period length out of range")
	ErrCycleStartDateInvalid         = errors.New("cycle start date invalid")
	ErrCycleStartInFuture            = errors.New("cycle start date in future")
	ErrCycleReferenceMissing         = errors.New("cycle reference missing")
	ErrCycleLogDateInvalid           = errors.New("cycle log date invalid")
	ErrCycleLogDateInFuture          = errors.New("cycle log date in future")
	ErrCycleLogRangeInvalid          = errors.New("cycle log range invalid")
	ErrCycleLogTypeInvalid           = errors.New("cycle log type invalid")
	ErrCycleLogFlowInvalid           = errors.New("cycle log flow invalid")
	ErrCycleLogMoodInvalid           = errors.New("cycle log mood invalid")
	ErrCycleLogSymptomUnknown        = errors.New("cycle log symptom unknown")
	ErrCycleLogTemperatureOutOfRange = errors.New("cycle log temperature out of range")
	ErrCycleLogNotesTooLong          = errors.New("cycle log notes too long")
	ErrCycleLogNotFound              = errors.New("cycle log not found")
)

type SymptomCatalog interface {
	HasSymptom(id string) bool
}

type CycleLogInput struct {
	LogType     string
	Flow        string
	Symptoms    []string
	Mood        string
	Temperature *float64
	Notes       string
}

func IsValidCycleLength(value int) bool {
	return value >= MinCycleLength && value <= MaxCycleLength
}

func IsValidPeriodLength(value int) bool {
	return value >= MinPeriodLength && value <= MaxPeriodLength
}

// NormalizeCycleLogInput validates the entry and fills a log ready to be
// stored. Date and owner are left to the caller.
func NormalizeCycleLogInput(input CycleLogInput, symptoms SymptomCatalog) (models.CycleLog, error) {
	entry := models.CycleLog{
		LogType: strings.ToLower(strings.TrimSpace(input.LogType)),
		Flow:    strings.ToLower(strings.TrimSpace(input.Flow)),
		Mood:    strings.ToLower(strings.TrimSpace(input.Mood)),
	}

	switch entry.LogType {
	case models.LogTypePeriod, models.LogTypeSymptoms, models.LogTypeMood, models.LogTypeTemperature:
	default:
		return models.CycleLog{}, ErrCycleLogTypeInvalid
	}

	if entry.Flow == "" {
		entry.Flow = models.FlowNone
	}
	switch entry.Flow {
	case models.FlowNone, models.FlowLight, models.FlowMedium, models.FlowHeavy:
	default:
		return models.CycleLog{}, ErrCycleLogFlowInvalid
	}
	entry.IsPeriod = entry.LogType == models.LogTypePeriod

	switch entry.Mood {
	case "", models.MoodHappy, models.MoodNeutral, models.MoodSad, models.MoodAnxious, models.MoodIrritable:
	default:
		return models.CycleLog{}, ErrCycleLogMoodInvalid
	}

	entry.Symptoms = make([]string, 0, len(input.Symptoms))
	seen := make(map[string]struct{}, len(input.Symptoms))
	for _, raw := range input.Symptoms {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if symptoms == nil || !symptoms.HasSymptom(id) {
			return models.CycleLog{}, ErrCycleLogSymptomUnknown
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		entry.Symptoms = append(entry.Symptoms, id)
	}

	if input.Temperature != nil {
		value := *input.Temperature
		if value < MinTemperatureC || value > MaxTemperatureC {
			return models.CycleLog{}, ErrCycleLogTemperatureOutOfRange
		}
		entry.Temperature = &value
	}

	if runeLength(input.Notes) > MaxCycleLogNotesLen {
		return models.CycleLog{}, ErrCycleLogNotesTooLong
	}
	entry.Notes = StripMarkup(input.Notes)
	return entry, nil
}
