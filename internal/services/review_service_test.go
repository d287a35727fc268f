package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestReviews_ForClient(t *testing.T) {
	e := newEnv(t)

	v, err := e.reviews.ForClient("client-1")
	require.NoError(t, err)
	require.Len(t, v.Reviews, 1)
	assert.Equal(t, "Alex Rodriguez", v.Reviews[0].ProviderName)
	assert.Empty(t, v.Pending)

	mine, err := e.reviews.ForProvider("provider-2")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestReviews_CreateUpdateDelete(t *testing.T) {
	e := newEnv(t)
	client := e.user(t, "client-1")

	_, err := e.reviews.Create(client, "apt-2", "5", "")
	assert.ErrorIs(t, err, services.ErrNotReviewable)
	_, err = e.reviews.Create(client, "apt-4", "5", "")
	assert.ErrorIs(t, err, services.ErrReviewExists)
	_, err = e.reviews.Create(e.user(t, "client-2"), "apt-4", "5", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	e.aptSvc.Clock = func() time.Time { return time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC) }
	_, err = e.aptSvc.Transition(e.user(t, "provider-1"), "apt-1", domain.StatusCompleted)
	require.NoError(t, err)

	pending, err := e.reviews.ForClient("client-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-1"}, ids(pending.Pending))

	_, err = e.reviews.Create(client, "apt-1", "0", "")
	var fe services.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "rating")

	rv, err := e.reviews.Create(client, "apt-1", "4", "Lovely cut")
	require.NoError(t, err)
	assert.Equal(t, "provider-1", rv.ProviderID)
	assert.Contains(t, e.titles(t, "provider-1"), "New Review Received")

	upd, err := e.reviews.Update(client, rv.ID, "5", " Even better on day two ")
	require.NoError(t, err)
	assert.Equal(t, 5, upd.Rating)
	assert.Equal(t, "Even better on day two", upd.Comment)

	_, err = e.reviews.Update(e.user(t, "client-2"), rv.ID, "1", "")
	assert.ErrorIs(t, err, services.ErrForbidden)

	require.NoError(t, e.reviews.Delete(client, rv.ID))
	assert.ErrorIs(t, e.reviews.Delete(client, rv.ID), services.ErrNotFound)
}
