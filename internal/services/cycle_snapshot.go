package services

import (
	"fmt"
	"time"
)

type CyclePhase string

const (
	PhaseMenstrual  CyclePhase = "menstrual"
	PhaseFollicular CyclePhase = "follicular"
	PhaseOvulatory  CyclePhase = "ovulatory"
	PhaseLuteal     CyclePhase = "luteal"
)

// Phase bands are counted in cycle days and do not scale with cycle length.
const (
	menstrualPhaseLastDay  = 5
	follicularPhaseLastDay = 13
	ovulatoryPhaseLastDay  = 16
	fertileWindowLeadDays  = 5
)

var ErrInvalidCycleLength = fmt.Errorf("%w: average cycle length must be positive", ErrInvalidArgument)

type CycleReferencePoint struct {
	StartOfLastPeriod      time.Time
	AverageCycleLengthDays int
}

type FertileWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type CycleSnapshot struct {
	CurrentCycleDay         int           `json:"current_cycle_day"`
	Phase                   CyclePhase    `json:"phase"`
	PredictedNextCycleStart time.Time     `json:"predicted_next_cycle_start"`
	OvulationDayIndex       int           `json:"ovulation_day_index"`
	OvulationDate           time.Time     `json:"ovulation_date"`
	DaysUntilOvulation      int           `json:"days_until_ovulation"`
	FertileWindow           FertileWindow `json:"fertile_window"`

	averageCycleLengthDays int
}

// Stale reports whether now falls outside the cycle that starts at the
// reference point, either before it or after its predicted end.
func (snapshot CycleSnapshot) Stale() bool {
	return snapshot.CurrentCycleDay < 1 || snapshot.CurrentCycleDay > snapshot.averageCycleLengthDays
}

func (reference CycleReferencePoint) Snapshot(now time.Time) (CycleSnapshot, error) {
	return ComputeCycleSnapshot(now, reference.StartOfLastPeriod, reference.AverageCycleLengthDays)
}

// ComputeCycleSnapshot derives where now sits in the cycle that began at
// startOfLastPeriod. Dates are compared in the location of startOfLastPeriod.
func ComputeCycleSnapshot(now time.Time, startOfLastPeriod time.Time, averageCycleLengthDays int) (CycleSnapshot, error) {
	if averageCycleLengthDays <= 0 {
		return CycleSnapshot{}, ErrInvalidCycleLength
	}

	location := startOfLastPeriod.Location()
	start := DateAtLocation(startOfLastPeriod, location)
	currentDay := calendarDaysBetween(start, now, location) + 1
	ovulationIndex := OvulationDayIndex(averageCycleLengthDays)

	window := FertileWindow{
		Start: start.AddDate(0, 0, ovulationIndex-fertileWindowLeadDays),
		End:   start.AddDate(0, 0, ovulationIndex),
	}

	return CycleSnapshot{
		CurrentCycleDay:         currentDay,
		Phase:                   PhaseForCycleDay(currentDay),
		PredictedNextCycleStart: start.AddDate(0, 0, averageCycleLengthDays),
		OvulationDayIndex:       ovulationIndex,
		OvulationDate:           window.End,
		DaysUntilOvulation:      ovulationIndex - currentDay,
		FertileWindow:           window,
		averageCycleLengthDays:  averageCycleLengthDays,
	}, nil
}

func PhaseForCycleDay(day int) CyclePhase {
	switch {
	case day >= 1 && day <= menstrualPhaseLastDay:
		return PhaseMenstrual
	case day > menstrualPhaseLastDay && day <= follicularPhaseLastDay:
		return PhaseFollicular
	case day > follicularPhaseLastDay && day <= ovulatoryPhaseLastDay:
		return PhaseOvulatory
	default:
		return PhaseLuteal
	}
}

// OvulationDayIndex is half the cycle length rounded half up.
func OvulationDayIndex(averageCycleLengthDays int) int {
	return (averageCycleLengthDays + 1) / 2
}
