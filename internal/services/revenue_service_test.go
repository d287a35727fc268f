package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevenue_Platform(t *testing.T) {
	e := newEnv(t)

	r, err := e.revenue.Platform()
	require.NoError(t, err)
	assert.Equal(t, 125.0, r.Gross)
	assert.Equal(t, 12.5, r.Commission)
	assert.Equal(t, 112.5, r.Earnings)
	assert.Equal(t, 2, r.Completed)

	require.Len(t, r.ByProvider, 2)
	assert.Equal(t, "Alex Rodriguez", r.ByProvider[0].Label)
	assert.Equal(t, 7.5, r.ByProvider[0].Commission)
	assert.Equal(t, "Sarah Johnson", r.ByProvider[1].Label)

	require.Len(t, r.ByCategory, 2)
	assert.Equal(t, "Fitness", r.ByCategory[0].Label)

	require.Len(t, r.ByMonth, 1)
	assert.Equal(t, "2024-01", r.ByMonth[0].Key)
	assert.Equal(t, "January 2024", r.ByMonth[0].Label)
	assert.Equal(t, 2, r.ByMonth[0].Count)

	require.Len(t, r.TopTransactions, 2)
	assert.Equal(t, "apt-4", r.TopTransactions[0].ID)
}

func TestRevenue_Provider(t *testing.T) {
	e := newEnv(t)

	r, err := e.revenue.Provider("provider-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, r.Gross)
	assert.Equal(t, 5.0, r.Commission)
	assert.Equal(t, 45.0, r.Earnings)
	require.Len(t, r.ByService, 1)
	assert.Equal(t, "Hair Cut & Styling", r.ByService[0].Label)
	require.Len(t, r.Recent, 1)
	assert.Equal(t, "apt-3", r.Recent[0].ID)

	empty, err := e.revenue.Provider("provider-2")
	require.NoError(t, err)
	assert.Zero(t, empty.Gross)
	assert.Empty(t, empty.ByMonth)
}
