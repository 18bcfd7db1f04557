package projection

import (
	"errors"
	"math"
)

var (
	// ErrInvalidParams is returned when the input parameters cannot
	// describe a projection (negative amounts, non-positive horizon).
	ErrInvalidParams = errors.New("projection: invalid parameters")
)

// Params describes a projection scenario.
type Params struct {
	// InitialAmount is the lump sum invested at month zero.
	InitialAmount float64
	// MonthlyContribution is added at the end of every month.
	MonthlyContribution float64
	// AnnualRate is the assumed yearly return, e.g. 0.07 for 7%.
	// Compounding is monthly at AnnualRate / 12.
	AnnualRate float64
	// Years is the projection horizon.
	Years int
}

// Validate reports whether the parameters describe a computable scenario.
func (p Params) Validate() error {
	switch {
	case p.InitialAmount < 0:
		return errors.Join(ErrInvalidParams, errors.New("initial amount is negative"))
	case p.MonthlyContribution < 0:
		return errors.Join(ErrInvalidParams, errors.New("monthly contribution is negative"))
	case p.AnnualRate < -1:
		return errors.Join(ErrInvalidParams, errors.New("annual rate below -100%"))
	case p.Years <= 0:
		return errors.Join(ErrInvalidParams, errors.New("years must be positive"))
	case math.IsNaN(p.InitialAmount) || math.IsNaN(p.MonthlyContribution) || math.IsNaN(p.AnnualRate):
		return errors.Join(ErrInvalidParams, errors.New("parameter is NaN"))
	case math.IsInf(p.InitialAmount, 0) || math.IsInf(p.MonthlyContribution, 0) || math.IsInf(p.AnnualRate, 0):
		return errors.Join(ErrInvalidParams, errors.New("parameter is infinite"))
	}
	return nil
}

// Point is one year-end row of a projection schedule.
type Point struct {
	// Year counts from 1.
	Year int
	// Contributed is the total paid in by the end of this year: the
	// initial amount plus every monthly contribution so far.
	Contributed float64
	// Value is the projected balance at the end of this year.
	Value float64
}

// Schedule computes the year-by-year projection for the given scenario.
// Month by month the balance grows at the monthly rate and then receives
// the contribution; a snapshot is taken every twelfth month.
func Schedule(p Params) ([]Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	monthlyRate := p.AnnualRate / 12
	value := p.InitialAmount
	contributed := p.InitialAmount

	points := make([]Point, 0, p.Years)
	for year := 1; year <= p.Years; year++ {
		for month := 0; month < 12; month++ {
			value = value*(1+monthlyRate) + p.MonthlyContribution
			contributed += p.MonthlyContribution
		}
		points = append(points, Point{
			Year:        year,
			Contributed: contributed,
			Value:       value,
		})
	}
	return points, nil
}

// FinalValue is a convenience for callers that only need the end balance.
func FinalValue(p Params) (float64, error) {
	points, err := Schedule(p)
	if err != nil {
		return 0, err
	}
	return points[len(points)-1].Value, nil
}
