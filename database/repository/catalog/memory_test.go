package catalogRepo

import (
	"context"
	"sync"
	"testing"
	"time"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepo(t *testing.T) CatalogRepository {
	t.Helper()
	return NewMemoryCatalogRepo(SeedItems(), SeedSlots(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), 3))
}

func TestFindAvailableFiltersByDate(t *testing.T) {
	repo := testRepo(t)

	offers, err := repo.FindAvailable(context.Background(), models.CategoryRoom, models.Constraints{Date: "2026-09-02"})
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	for _, o := range offers {
		assert.Equal(t, "2026-09-02", o.Slot.Date)
		assert.Equal(t, models.CategoryRoom, o.Item.Category)
	}
}

func TestFindAvailableShoesByActivityAndSize(t *testing.T) {
	repo := testRepo(t)

	offers, err := repo.FindAvailable(context.Background(), models.CategoryShoe, models.Constraints{Activity: "running", Size: "10"})
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	for _, o := range offers {
		assert.Equal(t, "running", o.Item.Activity)
		assert.Equal(t, "10", o.Item.Size)
		assert.Nil(t, o.Slot)
	}
}

func TestFindAvailableMaxPrice(t *testing.T) {
	repo := testRepo(t)

	offers, err := repo.FindAvailable(context.Background(), models.CategoryShoe, models.Constraints{MaxPrice: 100})
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	for _, o := range offers {
		assert.LessOrEqual(t, o.Price, 100.0)
	}
}

func TestFindAvailableDeterministicOrder(t *testing.T) {
	repo := testRepo(t)
	cons := models.Constraints{Date: "2026-09-01"}

	first, err := repo.FindAvailable(context.Background(), models.CategorySpa, cons)
	require.NoError(t, err)
	second, err := repo.FindAvailable(context.Background(), models.CategorySpa, cons)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReserveRejectsStalePrice(t *testing.T) {
	repo := testRepo(t)
	ref := models.SlotRef{ItemID: "room-109", SlotID: "room-109-2026-09-01-900", Date: "2026-09-01"}

	err := repo.Reserve(context.Background(), ref, 99)
	assert.ErrorIs(t, err, ErrPriceMismatch)

	// Nothing was consumed by the refused attempt.
	require.NoError(t, repo.Reserve(context.Background(), ref, 150))
}

func TestReserveUnknownRef(t *testing.T) {
	repo := testRepo(t)

	err := repo.Reserve(context.Background(), models.SlotRef{ItemID: "room-109", SlotID: "nope", Date: "2026-09-01"}, 150)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserveLastUnitConcurrently(t *testing.T) {
	repo := testRepo(t)
	// Capacity 1: the hot stone morning slot.
	ref := models.SlotRef{ItemID: "spa-hotstone", SlotID: "spa-hotstone-2026-09-01-600", Date: "2026-09-01"}

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Reserve(context.Background(), ref, 90)
		}(i)
	}
	wg.Wait()

	var wins, refusals int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, ErrUnavailable)
			refusals++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, refusals)
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ref := models.SlotRef{ItemID: "room-117", SlotID: "room-117-2026-09-01-900", Date: "2026-09-01"}

	require.NoError(t, repo.Reserve(context.Background(), ref, 120))
	assert.ErrorIs(t, repo.Reserve(context.Background(), ref, 120), ErrUnavailable)

	require.NoError(t, repo.Release(context.Background(), ref))
	assert.NoError(t, repo.Reserve(context.Background(), ref, 120))
}

func TestReserveSKUDecrementsStock(t *testing.T) {
	repo := testRepo(t)
	ref := models.SlotRef{ItemID: "shoe-mex-10"} // stock 2

	require.NoError(t, repo.Reserve(context.Background(), ref, 179.99))
	require.NoError(t, repo.Reserve(context.Background(), ref, 179.99))
	assert.ErrorIs(t, repo.Reserve(context.Background(), ref, 179.99), ErrUnavailable)

	require.NoError(t, repo.Release(context.Background(), ref))
	assert.NoError(t, repo.Reserve(context.Background(), ref, 179.99))
}

func TestCurrentPrice(t *testing.T) {
	repo := testRepo(t)

	price, err := repo.CurrentPrice(context.Background(), models.SlotRef{ItemID: "shoe-cw-10"})
	require.NoError(t, err)
	assert.Equal(t, 89.99, price)

	price, err = repo.CurrentPrice(context.Background(), models.SlotRef{ItemID: "golf-twilight", SlotID: "golf-twilight-2026-09-01-960", Date: "2026-09-01"})
	require.NoError(t, err)
	assert.Equal(t, 45.0, price)

	_, err = repo.CurrentPrice(context.Background(), models.SlotRef{ItemID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}
