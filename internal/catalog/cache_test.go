package catalog

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListActiveBranches(ctx context.Context) ([]models.Branch, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Branch), args.Error(1)
}

func (m *MockSource) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MenuItem), args.Error(1)
}

func TestCacheRefresh(t *testing.T) {
	source := new(MockSource)
	source.On("ListActiveBranches", mock.Anything).Return([]models.Branch{
		{ID: "b1", Name: "Olaya", Active: true},
		{ID: "b2", Name: "Closed", Active: false},
	}, nil)
	source.On("ListMenuItems", mock.Anything).Return([]models.MenuItem{
		{ID: "m1", NameAr: "فلافل", NameEn: "Falafel", Price: decimal.NewFromInt(5), Available: true},
		{ID: "m2", NameAr: "عصير", NameEn: "Juice", Price: decimal.NewFromInt(4), Category: models.CategoryDrink},
	}, nil)

	cache := NewCache(source)
	require.NoError(t, cache.Refresh(context.Background()))

	assert.Len(t, cache.Branches(), 1)
	_, ok := cache.Branch("b2")
	assert.False(t, ok, "inactive branches are never offered")

	item, ok := cache.Item("m1")
	require.True(t, ok)
	assert.Equal(t, models.CategorySandwich, item.Category)
	assert.Len(t, cache.ItemsIn(models.CategoryDrink), 1)
	assert.Equal(t, uint64(1), cache.Seq())
	source.AssertExpectations(t)
}

func TestCacheRefreshKeepsOldDataOnError(t *testing.T) {
	source := new(MockSource)
	source.On("ListActiveBranches", mock.Anything).Return(nil, errors.New("connection refused"))

	cache := NewCache(source)
	cache.Apply(Snapshot{Seq: 0, Items: []models.MenuItem{{ID: "m1"}}})

	err := cache.Refresh(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load branches")
	_, ok := cache.Item("m1")
	assert.True(t, ok)
	source.AssertNotCalled(t, "ListMenuItems", mock.Anything)
}

func TestCacheDiscardsOutOfOrderSnapshot(t *testing.T) {
	cache := NewCache(new(MockSource))

	var notified []uint64
	cache.OnUpdate(func(s Snapshot) { notified = append(notified, s.Seq) })

	newer := Snapshot{Seq: 2, Items: []models.MenuItem{{ID: "new", Price: decimal.NewFromInt(9)}}}
	older := Snapshot{Seq: 1, Items: []models.MenuItem{{ID: "old", Price: decimal.NewFromInt(7)}}}

	assert.True(t, cache.Apply(newer))
	assert.False(t, cache.Apply(older))

	_, ok := cache.Item("old")
	assert.False(t, ok)
	_, ok = cache.Item("new")
	assert.True(t, ok)
	assert.Equal(t, []uint64{2}, notified)
}

func TestCacheSnapshotReplacesWholeMenu(t *testing.T) {
	cache := NewCache(new(MockSource))
	cache.Apply(Snapshot{Seq: 1, Items: []models.MenuItem{{ID: "a"}, {ID: "b"}}})
	cache.Apply(Snapshot{Seq: 2, Items: []models.MenuItem{{ID: "c"}}})

	items := cache.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].ID)
}

func TestMapEmbedURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://www.google.com/maps/place/Falafel+House/@24.7136,46.6753,17z",
			"https://www.google.com/maps?q=24.7136,46.6753&output=embed"},
		{"https://www.google.com/maps/place/Falafel+House/data",
			"https://www.google.com/maps?q=Falafel%20House&output=embed"},
		{"https://maps.example.com/view?id=3", "https://maps.example.com/view?id=3&output=embed"},
		{"https://maps.example.com/view", "https://maps.example.com/view?output=embed"},
		{"https://www.google.com/maps?q=x&output=embed", "https://www.google.com/maps?q=x&output=embed"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapEmbedURL(tt.in), tt.in)
	}
}

func TestSlugAndPhoneDigits(t *testing.T) {
	assert.Equal(t, "olaya-street", Slug("Olaya  Street!"))
	assert.Equal(t, "966512345678", PhoneDigits("+966 5 1234 5678"))
}
