package reports

import (
	"context"
	"sort"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// Service aggregates booking facts into time-bucketed report rows.
// Earnings cover completed bookings only; counts cover every status.
// Both are scoped to the principal's company and, for non-admins,
// narrowed to the principal's own bookings.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Earnings sums completed-booking prices per period.
func (s *Service) Earnings(ctx context.Context, p shared.Principal, params Params) ([]EarningsRow, error) {
	facts, err := s.repo.CompletedBookings(ctx, shared.ScopeFor(p))
	if err != nil {
		return nil, err
	}

	if params.allTime() {
		var total float64
		for _, f := range facts {
			total += f.Price
		}
		return []EarningsRow{{Period: PeriodAllTime, Total: total}}, nil
	}

	buckets, ok := bucketize(params, facts)
	if !ok {
		return []EarningsRow{}, nil
	}

	rows := make([]EarningsRow, 0, len(buckets))
	for period, agg := range buckets {
		rows = append(rows, EarningsRow{Period: period, Total: agg.total})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}

// Counts tallies bookings of any status per period, using the same
// bucketing as Earnings.
func (s *Service) Counts(ctx context.Context, p shared.Principal, params Params) ([]CountRow, error) {
	facts, err := s.repo.AllBookings(ctx, shared.ScopeFor(p))
	if err != nil {
		return nil, err
	}

	if params.allTime() {
		return []CountRow{{Period: PeriodAllTime, Count: int64(len(facts))}}, nil
	}

	buckets, ok := bucketize(params, facts)
	if !ok {
		return []CountRow{}, nil
	}

	rows := make([]CountRow, 0, len(buckets))
	for period, agg := range buckets {
		rows = append(rows, CountRow{Period: period, Count: agg.count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows, nil
}

// Summary fetches all-time earnings and count in one call.
func (s *Service) Summary(ctx context.Context, p shared.Principal) (*Summary, error) {
	var summary Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.Earnings(ctx, p, Params{})
		if err != nil {
			return err
		}
		summary.Earnings = rows[0]
		return nil
	})
	g.Go(func() error {
		rows, err := s.Counts(ctx, p, Params{})
		if err != nil {
			return err
		}
		summary.Count = rows[0]
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (p Params) allTime() bool {
	return p.Timeframe == ""
}

type aggregate struct {
	total float64
	count int64
}

// bucketize groups facts by period according to the timeframe rules.
// The second return value is false for parameter combinations that do
// not select any bucketing, which yield an empty report.
func bucketize(params Params, facts []BookingFact) (map[string]aggregate, bool) {
	keyFn, ok := bucketKey(params)
	if !ok {
		return nil, false
	}

	buckets := make(map[string]aggregate)
	for _, f := range facts {
		key, match := keyFn(f.PickupTime.UTC())
		if !match {
			continue
		}
		agg := buckets[key]
		agg.total += f.Price
		agg.count++
		buckets[key] = agg
	}
	return buckets, true
}

func bucketKey(params Params) (func(time.Time) (string, bool), bool) {
	switch params.Timeframe {
	case TimeframeYearly:
		if params.Year != nil {
			year := *params.Year
			return func(t time.Time) (string, bool) {
				if t.Year() != year {
					return "", false
				}
				return strconv.Itoa(int(t.Month())), true
			}, true
		}
		return func(t time.Time) (string, bool) {
			return strconv.Itoa(t.Year()), true
		}, true

	case TimeframeMonthly:
		if params.Year == nil || params.Month == nil {
			return nil, false
		}
		year, month := *params.Year, *params.Month
		return func(t time.Time) (string, bool) {
			if t.Year() != year || int(t.Month()) != month {
				return "", false
			}
			_, week := t.ISOWeek()
			return strconv.Itoa(week), true
		}, true

	case TimeframeWeekly:
		if params.Year == nil || params.Month == nil || params.Day == nil {
			return nil, false
		}
		year, month, day := *params.Year, *params.Month, *params.Day
		return func(t time.Time) (string, bool) {
			if t.Year() != year || int(t.Month()) != month || t.Day() != day {
				return "", false
			}
			return t.Format("2006-01-02"), true
		}, true
	}

	return nil, false
}
