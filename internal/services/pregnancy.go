package services

import (
	"fmt"
	"time"
)

const (
	pregnancyTermDays       = 280
	pregnancyTermWeeks      = 40
	firstTrimesterLastWeek  = 12
	secondTrimesterLastWeek = 27
)

var ErrPregnancyLMPInFuture = fmt.Errorf("%w: last menstrual period is in the future", ErrInvalidArgument)

type PregnancyStatus struct {
	LastMenstrualPeriod time.Time `json:"last_menstrual_period"`
	DueDate             time.Time `json:"due_date"`
	GestationalWeeks    int       `json:"gestational_weeks"`
	GestationalDays     int       `json:"gestational_days"`
	Trimester           int       `json:"trimester"`
	WeeksRemaining      int       `json:"weeks_remaining"`
}

// ComputePregnancyStatus dates a pregnancy from the first day of the last
// menstrual period using a 280 day term.
func ComputePregnancyStatus(now time.Time, lastMenstrualPeriod time.Time) (PregnancyStatus, error) {
	location := lastMenstrualPeriod.Location()
	lmp := DateAtLocation(lastMenstrualPeriod, location)
	elapsed := calendarDaysBetween(lmp, now, location)
	if elapsed < 0 {
		return PregnancyStatus{}, ErrPregnancyLMPInFuture
	}

	weeks := elapsed / 7
	remaining := pregnancyTermWeeks - weeks
	if remaining < 0 {
		remaining = 0
	}

	return PregnancyStatus{
		LastMenstrualPeriod: lmp,
		DueDate:             lmp.AddDate(0, 0, pregnancyTermDays),
		GestationalWeeks:    weeks,
		GestationalDays:     elapsed % 7,
		Trimester:           TrimesterForWeek(weeks),
		WeeksRemaining:      remaining,
	}, nil
}

func TrimesterForWeek(week int) int {
	switch {
	case week <= firstTrimesterLastWeek:
		return 1
	case week <= secondTrimesterLastWeek:
		return 2
	default:
		return 3
	}
}
