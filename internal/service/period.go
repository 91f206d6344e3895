package service

import (
	"fmt"
	"time"

	"wallet-api/internal/repository"
)

const (
	minYear = 2000
	maxYear = 2100
)

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidPeriod, minYear, maxYear)
	}
	return nil
}

func validateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidPeriod)
	}
	return nil
}

func yearPeriod(year int) (repository.Period, error) {
	if err := validateYear(year); err != nil {
		return repository.Period{}, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return repository.Period{From: from, To: from.AddDate(1, 0, 0)}, nil
}

func monthPeriod(year, month int) (repository.Period, error) {
	if err := validateYear(year); err != nil {
		return repository.Period{}, err
	}
	if err := validateMonth(month); err != nil {
		return repository.Period{}, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return repository.Period{From: from, To: from.AddDate(0, 1, 0)}, nil
}

// PeriodFilter is an optional year, optionally narrowed to a month. Zero
// values mean "no filter".
type PeriodFilter struct {
	Year  int
	Month int
}

func (f PeriodFilter) period() (repository.Period, error) {
	switch {
	case f.Year == 0 && f.Month == 0:
		return repository.Period{}, nil
	case f.Year == 0:
		return repository.Period{}, fmt.Errorf("%w: month filter needs a year", ErrInvalidPeriod)
	case f.Month == 0:
		return yearPeriod(f.Year)
	default:
		return monthPeriod(f.Year, f.Month)
	}
}
