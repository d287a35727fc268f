package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestNotifications(t *testing.T) {
	e := newEnv(t)

	all, err := e.notes.List("client-1", "", false)
	require.NoError(t, err)
	assert.Len(t, all.Items, 7)
	assert.Equal(t, 3, all.UnreadCount)
	assert.Equal(t, "notif-c3", all.Items[0].ID, "newest first")

	promos, err := e.notes.List("client-1", domain.NotifyPromotion, false)
	require.NoError(t, err)
	assert.Len(t, promos.Items, 2)

	unread, err := e.notes.List("client-1", "", true)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 3)

	require.NoError(t, e.notes.MarkRead("client-1", "notif-c1"))
	assert.ErrorIs(t, e.notes.MarkRead("client-2", "notif-c2"), services.ErrNotFound, "someone else's notification")

	n, err := e.notes.MarkAllRead("client-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	count, err := e.notes.UnreadCount("client-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, e.notes.Delete("client-1", "notif-c1"))
	assert.ErrorIs(t, e.notes.Delete("client-1", "notif-c1"), services.ErrNotFound)
}
