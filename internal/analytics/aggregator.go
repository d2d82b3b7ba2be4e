package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/i18n"
	"storefront/internal/models"
)

// Period selects the analytics window
type Period string

// Supported periods
const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

const (
	// NoPeakHour is reported when no submitted order has a usable timestamp
	NoPeakHour = "-"
	// EmptyPlaceholder replaces an empty ranking
	EmptyPlaceholder = i18n.LabelNoOrders
	// TopItemsLimit caps the top items ranking
	TopItemsLimit = 10
)

// ParsePeriod validates a period name, defaulting to daily when empty
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown analytics period %q", s)
	}
}

// WindowStart returns the first instant included in the period, computed
// in the location of now
func WindowStart(p Period, now time.Time) time.Time {
	switch p {
	case Weekly:
		return now.Add(-7 * 24 * time.Hour)
	case Monthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
}

// Ranked is one row of a ranking
type Ranked struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Ranking is an ordered list with a placeholder shown when it is empty
type Ranking struct {
	Entries     []Ranked `json:"entries"`
	Placeholder string   `json:"placeholder,omitempty"`
}

// Report is the aggregated view of a window of order events
type Report struct {
	TotalOrders    int     `json:"total_orders"`
	PeakHour       int     `json:"-"`
	PeakHourLabel  string  `json:"peak_hour"`
	TopItems       Ranking `json:"top_items"`
	OrdersByBranch Ranking `json:"orders_by_branch"`
}

// HasPeakHour reports whether a peak hour was found
func (r Report) HasPeakHour() bool {
	return r.PeakHour >= 0
}

// Aggregate computes the report over submitted orders only. Hours are taken
// in loc. Events whose timestamp cannot be resolved are left out of the
// hour tally but still count everywhere else.
func Aggregate(events []models.OrderEvent, loc *time.Location) Report {
	if loc == nil {
		loc = time.Local
	}

	var orders []models.OrderEvent
	for _, e := range events {
		if e.Type == models.EventTypeOrderSubmitted {
			orders = append(orders, e)
		}
	}

	report := Report{TotalOrders: len(orders), PeakHour: -1, PeakHourLabel: NoPeakHour}

	if hour, ok := peakHour(orders, loc); ok {
		report.PeakHour = hour
		report.PeakHourLabel = fmt.Sprintf("%d:00", hour)
	}

	items := newTally()
	branches := newTally()
	for _, o := range orders {
		for _, item := range o.Items {
			items.add(item.ItemName, item.Quantity)
		}
		if o.BranchName != "" {
			branches.add(o.BranchName, 1)
		}
	}

	report.TopItems = items.ranking(TopItemsLimit)
	report.OrdersByBranch = branches.ranking(0)
	return report
}

// peakHour returns the busiest hour; ties go to the hour seen first
func peakHour(orders []models.OrderEvent, loc *time.Location) (int, bool) {
	var counts [24]int
	var order []int
	for _, o := range orders {
		ts, ok := o.Timestamp.Normalize()
		if !ok {
			continue
		}
		h := ts.In(loc).Hour()
		if counts[h] == 0 {
			order = append(order, h)
		}
		counts[h]++
	}

	peak, best := -1, 0
	for _, h := range order {
		if counts[h] > best {
			peak, best = h, counts[h]
		}
	}
	return peak, peak >= 0
}

// tally sums counts per name, remembering first-seen order
type tally struct {
	index   map[string]int
	entries []Ranked
}

func newTally() *tally {
	return &tally{index: map[string]int{}}
}

func (t *tally) add(name string, n int) {
	if i, ok := t.index[name]; ok {
		t.entries[i].Count += n
		return
	}
	t.index[name] = len(t.entries)
	t.entries = append(t.entries, Ranked{Name: name, Count: n})
}

// ranking sorts descending, stable on ties, and truncates when limit > 0
func (t *tally) ranking(limit int) Ranking {
	entries := append([]Ranked(nil), t.entries...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return Ranking{Entries: []Ranked{}, Placeholder: EmptyPlaceholder}
	}
	return Ranking{Entries: entries}
}
