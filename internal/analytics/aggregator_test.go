package analytics

import (
	"fmt"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submittedAt(hour int, branch string, items ...models.EventItem) models.OrderEvent {
	return models.OrderEvent{
		Type:       models.EventTypeOrderSubmitted,
		BranchName: branch,
		Items:      items,
		Timestamp:  models.NativeTimestamp(time.Date(2026, 10, 19, hour, 15, 0, 0, time.UTC)),
	}
}

func item(name string, qty int) models.EventItem {
	return models.EventItem{ItemName: name, Quantity: qty}
}

func TestAggregatePeakHour(t *testing.T) {
	events := []models.OrderEvent{
		submittedAt(9, "Olaya"),
		submittedAt(9, "Olaya"),
		submittedAt(14, "Malqa"),
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, 3, report.TotalOrders)
	assert.Equal(t, 9, report.PeakHour)
	assert.Equal(t, "9:00", report.PeakHourLabel)
}

func TestAggregatePeakHourTieKeepsFirstSeen(t *testing.T) {
	events := []models.OrderEvent{
		submittedAt(20, "Olaya"),
		submittedAt(8, "Olaya"),
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, 20, report.PeakHour)
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil, time.UTC)

	assert.Equal(t, 0, report.TotalOrders)
	assert.False(t, report.HasPeakHour())
	assert.Equal(t, NoPeakHour, report.PeakHourLabel)
	assert.Empty(t, report.TopItems.Entries)
	assert.Equal(t, EmptyPlaceholder, report.TopItems.Placeholder)
	assert.Equal(t, EmptyPlaceholder, report.OrdersByBranch.Placeholder)
}

func TestAggregateIgnoresClickedEvents(t *testing.T) {
	events := []models.OrderEvent{
		{Type: models.EventTypeOrderClicked, BranchName: "Olaya", ItemCount: 3,
			Timestamp: models.NativeTimestamp(time.Now())},
		submittedAt(12, "Malqa", item("Falafel", 1)),
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, 1, report.TotalOrders)
	assert.Equal(t, []Ranked{{Name: "Malqa", Count: 1}}, report.OrdersByBranch.Entries)
}

func TestAggregateTopItemsTiesKeepEncounterOrder(t *testing.T) {
	events := []models.OrderEvent{
		submittedAt(10, "Olaya", item("A", 3)),
		submittedAt(11, "Olaya", item("B", 5)),
		submittedAt(12, "Olaya", item("A", 2)),
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, []Ranked{{Name: "A", Count: 5}, {Name: "B", Count: 5}}, report.TopItems.Entries)
	assert.Empty(t, report.TopItems.Placeholder)
}

func TestAggregateTopItemsTruncatesToTen(t *testing.T) {
	var events []models.OrderEvent
	for i := 0; i < 15; i++ {
		events = append(events, submittedAt(10, "Olaya", item(fmt.Sprintf("item-%02d", i), i+1)))
	}

	report := Aggregate(events, time.UTC)

	require.Len(t, report.TopItems.Entries, TopItemsLimit)
	assert.Equal(t, "item-14", report.TopItems.Entries[0].Name)
	assert.Equal(t, 15, report.TopItems.Entries[0].Count)
}

func TestAggregateOrdersByBranchNotTruncated(t *testing.T) {
	var events []models.OrderEvent
	for i := 0; i < 12; i++ {
		events = append(events, submittedAt(10, fmt.Sprintf("branch-%d", i)))
	}
	events = append(events, submittedAt(11, "branch-5"))

	report := Aggregate(events, time.UTC)

	require.Len(t, report.OrdersByBranch.Entries, 12)
	assert.Equal(t, Ranked{Name: "branch-5", Count: 2}, report.OrdersByBranch.Entries[0])
	assert.Equal(t, "branch-0", report.OrdersByBranch.Entries[1].Name)
}

func TestAggregateMixedTimestampRepresentations(t *testing.T) {
	nine := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	events := []models.OrderEvent{
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.Timestamp{Kind: models.TimestampServer, Seconds: nine.Unix()}},
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.RawTimestamp(`"2026-10-19T09:45:00Z"`)},
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.NativeTimestamp(nine.Add(5 * time.Hour)), Offline: true},
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.RawTimestamp(`"garbage"`)},
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, 4, report.TotalOrders, "unparseable timestamps still count as orders")
	assert.Equal(t, 9, report.PeakHour)
}

func TestAggregateUsesCallerLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	events := []models.OrderEvent{submittedAt(9, "Olaya")}

	report := Aggregate(events, riyadh)

	assert.Equal(t, 12, report.PeakHour)
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), WindowStart(Daily, now))
	assert.Equal(t, time.Date(2026, 10, 12, 15, 30, 0, 0, time.UTC), WindowStart(Weekly, now))
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), WindowStart(Monthly, now))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, Daily, p)

	p, err = ParsePeriod("Weekly")
	require.NoError(t, err)
	assert.Equal(t, Weekly, p)

	_, err = ParsePeriod("yearly")
	assert.Error(t, err)
}

func TestAggregateSkipsNonFiniteRawTimestamps(t *testing.T) {
	events := []models.OrderEvent{
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.RawTimestamp(`"NaN"`)},
		{Type: models.EventTypeOrderSubmitted, Timestamp: models.RawTimestamp("1e300")},
	}

	report := Aggregate(events, time.UTC)

	assert.Equal(t, 2, report.TotalOrders)
	assert.False(t, report.HasPeakHour())
	assert.Equal(t, NoPeakHour, report.PeakHourLabel)
}
