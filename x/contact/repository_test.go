package contact

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/hmnpros/gateway/core"
	"github.com/hmnpros/gateway/internal/testutil"
)

func TestRepository(t *testing.T) {

	var ctx = context.Background()

	db, cleanup_db := testutil.CreateDB()
	defer cleanup_db()

	mc, cleanup_mc := testutil.CreateMC()
	defer cleanup_mc()

	repo := NewRepository(db, mc)

	contact := core.Contact{
		ID:         "abc123",
		LocationID: "loc1",
		FirstName:  "Jane",
		LastName:   "Doe",
		Email:      "jane@example.com",
		Phone:      "+17135550100",
		Tags:       pq.StringArray{"notary"},
	}

	err := repo.Upsert(ctx, contact)
	assert.NoError(t, err)

	// :: first read fills the cache, second read hits it ::
	fetched, err := repo.Get(ctx, "abc123")
	if assert.NoError(t, err) {
		assert.Equal(t, "jane@example.com", fetched.Email)
	}
	cached, err := repo.Get(ctx, "abc123")
	if assert.NoError(t, err) {
		assert.Equal(t, fetched.Email, cached.Email)
	}

	// :: upsert overwrites and invalidates the cached copy ::
	contact.Email = "jane.doe@example.com"
	err = repo.Upsert(ctx, contact)
	assert.NoError(t, err)

	fetched, err = repo.Get(ctx, "abc123")
	if assert.NoError(t, err) {
		assert.Equal(t, "jane.doe@example.com", fetched.Email)
	}

	// :: tag updates land ::
	err = repo.SetTags(ctx, "abc123", []string{"notary", "vip"})
	assert.NoError(t, err)
	fetched, err = repo.Get(ctx, "abc123")
	if assert.NoError(t, err) {
		assert.Equal(t, pq.StringArray{"notary", "vip"}, fetched.Tags)
	}

	// :: merge records the winner ::
	err = repo.Merge(ctx, "abc123", "winner9")
	assert.NoError(t, err)
	fetched, err = repo.Get(ctx, "abc123")
	if assert.NoError(t, err) {
		if assert.NotNil(t, fetched.MergedInto) {
			assert.Equal(t, "winner9", *fetched.MergedInto)
		}
	}

	// :: delete removes the row ::
	err = repo.Delete(ctx, "abc123")
	assert.NoError(t, err)
	_, err = repo.Get(ctx, "abc123")
	assert.Error(t, err)
	assert.IsType(t, core.ErrorNotFound{}, err)
}
