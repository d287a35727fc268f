package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicehub/internal/domain"
	"servicehub/internal/services"
)

func TestDashboard_Admin(t *testing.T) {
	e := newEnv(t)

	d, err := e.dash.Admin()
	require.NoError(t, err)
	assert.Equal(t, services.UserStats{Total: 6, Admins: 1, Providers: 3, Clients: 2}, d.Users)
	assert.Equal(t, 6, d.Appointments.Total)
	assert.Equal(t, 125.0, d.Revenue)
	assert.Equal(t, 12.5, d.Commission)
	assert.Len(t, d.Recent, 5)
}

func TestDashboard_Provider(t *testing.T) {
	e := newEnv(t)

	d, err := e.dash.Provider("provider-1")
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalAppointments)
	assert.Equal(t, 45.0, d.Earnings)
	assert.Equal(t, 2, d.UniqueClients)
	assert.Equal(t, 5.0, d.AverageRating)
	assert.Equal(t, []string{"apt-1"}, ids(d.Upcoming))
	assert.Len(t, d.RecentReviews, 1)
}

func TestDashboard_ProviderClients(t *testing.T) {
	e := newEnv(t)

	c, err := e.dash.Clients("provider-1", "", "")
	require.NoError(t, err)
	require.Len(t, c.Clients, 2)
	assert.Equal(t, 2, c.Total)
	assert.Equal(t, "client-1", c.Clients[0].ClientID, "most recent visit first")
	assert.Equal(t, "2024-02-15T14:00:00Z", c.Clients[0].LastVisit)
	assert.Empty(t, c.Clients[0].Segments)
	assert.Equal(t, "client-2", c.Clients[1].ClientID)
	assert.Equal(t, 50.0, c.Clients[1].TotalSpent)
	assert.Equal(t, []string{services.SegmentNew}, c.Clients[1].Segments)
	assert.Equal(t, 1, c.Clients[1].Reviews)
	assert.Equal(t, 1, c.New)
	assert.Equal(t, 50.0, c.Revenue)

	onlyNew, err := e.dash.Clients("provider-1", services.SegmentNew, "")
	require.NoError(t, err)
	require.Len(t, onlyNew.Clients, 1)

	jane, err := e.dash.Clients("provider-1", "", "JANE")
	require.NoError(t, err)
	require.Len(t, jane.Clients, 1)
	assert.Equal(t, "client-1", jane.Clients[0].ClientID)
	assert.Equal(t, 1, jane.New, "counts ignore the search")
}

func TestDashboard_ClientSegmentsOverlap(t *testing.T) {
	e := newEnv(t)

	for i, day := range []string{"2024-01-08", "2024-01-15", "2024-01-22"} {
		require.NoError(t, e.apts.Create(domain.Appointment{
			ID: fmt.Sprintf("apt-loyal-%d", i), ClientID: "client-2", ProviderID: "provider-3", ServiceID: "service-3",
			AppointmentDate: day + "T10:00:00Z", Status: domain.StatusCompleted,
			TotalAmount: 100, CommissionAmount: 10, PaymentStatus: domain.PaymentPaid,
			CreatedAt: day + "T09:00:00Z", UpdatedAt: day + "T11:00:00Z",
		}))
	}

	c, err := e.dash.Clients("provider-3", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Regular)
	assert.Equal(t, 1, c.VIP)
	assert.Equal(t, 1, c.New, "client-1 booked once")

	regular, err := e.dash.Clients("provider-3", services.SegmentRegular, "")
	require.NoError(t, err)
	require.Len(t, regular.Clients, 1)
	assert.Equal(t, "client-2", regular.Clients[0].ClientID)
	assert.Equal(t, 300.0, regular.Clients[0].TotalSpent)
	assert.ElementsMatch(t, []string{services.SegmentRegular, services.SegmentVIP}, regular.Clients[0].Segments)

	vip, err := e.dash.Clients("provider-3", services.SegmentVIP, "")
	require.NoError(t, err)
	require.Len(t, vip.Clients, 1)
	assert.Equal(t, "client-2", vip.Clients[0].ClientID)
}

func TestDashboard_Client(t *testing.T) {
	e := newEnv(t)

	d, err := e.dash.Client("client-1")
	require.NoError(t, err)
	assert.Equal(t, 4, d.TotalAppointments)
	assert.Equal(t, 1, d.Completed)
	assert.Equal(t, 2, d.Favorites)
	assert.Len(t, d.Upcoming, 2)
}

func TestProfileStats(t *testing.T) {
	e := newEnv(t)

	p, err := e.dash.ProfileStats(e.user(t, "provider-1"))
	require.NoError(t, err)
	assert.Equal(t, services.ProfileStats{
		TotalAppointments: 3, CompletedAppointments: 1, TotalEarnings: 45, AverageRating: 5, TotalReviews: 1,
	}, p)

	c, err := e.dash.ProfileStats(e.user(t, "client-2"))
	require.NoError(t, err)
	assert.Equal(t, services.ProfileStats{TotalAppointments: 2, CompletedAppointments: 1, TotalSpent: 50}, c)

	a, err := e.dash.ProfileStats(e.user(t, "admin-1"))
	require.NoError(t, err)
	assert.Zero(t, a)
}
