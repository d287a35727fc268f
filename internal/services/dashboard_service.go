package services

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

// DashboardService assembles the per-role landing pages.
type DashboardService struct {
	Users   *UserService
	Apts    *AppointmentService
	Reviews *repos.ReviewRepo
	Favs    *repos.FavoriteRepo
	Revenue *RevenueService
}

func NewDashboardService(users *UserService, apts *AppointmentService, reviews *repos.ReviewRepo,
	favs *repos.FavoriteRepo, revenue *RevenueService) *DashboardService {
	return &DashboardService{Users: users, Apts: apts, Reviews: reviews, Favs: favs, Revenue: revenue}
}

type AdminDashboard struct {
	Users        UserStats        `json:"users"`
	Appointments AppointmentStats `json:"appointments"`
	Revenue      float64          `json:"revenue"`
	Commission   float64          `json:"commission"`
	Recent       []domain.User    `json:"recent_users"`
}

type ProviderDashboard struct {
	TotalAppointments int                      `json:"total_appointments"`
	Earnings          float64                  `json:"earnings"`
	UniqueClients     int                      `json:"unique_clients"`
	AverageRating     float64                  `json:"average_rating"`
	ReviewCount       int                      `json:"review_count"`
	Upcoming          []domain.AppointmentView `json:"upcoming"`
	RecentReviews     []domain.ReviewView      `json:"recent_reviews"`
}

type ClientDashboard struct {
	TotalAppointments int                      `json:"total_appointments"`
	Completed         int                      `json:"completed"`
	Favorites         int                      `json:"favorites"`
	Upcoming          []domain.AppointmentView `json:"upcoming"`
}

// ClientSummary is one row of a provider's clients page.
type ClientSummary struct {
	ClientID     string   `json:"client_id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Appointments int      `json:"appointments"`
	Completed    int      `json:"completed"`
	TotalSpent   float64  `json:"total_spent"`
	LastVisit    string   `json:"last_visit"`
	Reviews      int      `json:"reviews"`
	Segments     []string `json:"segments"`
}

type ProviderClients struct {
	Clients []ClientSummary `json:"clients"`
	Total   int             `json:"total"`
	Regular int             `json:"regular"`
	New     int             `json:"new"`
	VIP     int             `json:"vip"`
	Revenue float64         `json:"revenue"`
	Segment string          `json:"segment"`
	Q       string          `json:"q"`
}

// ProfileStats are the numbers shown on the profile page; unused fields stay zero.
type ProfileStats struct {
	TotalAppointments     int     `json:"total_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	TotalEarnings         float64 `json:"total_earnings,omitempty"`
	TotalSpent            float64 `json:"total_spent,omitempty"`
	AverageRating         float64 `json:"average_rating,omitempty"`
	TotalReviews          int     `json:"total_reviews,omitempty"`
}

const (
	SegmentRegular = "regular"
	SegmentNew     = "new"
	SegmentVIP     = "vip"

	vipSpend = 200.0
)

func completedOf(all []domain.AppointmentView) []domain.AppointmentView {
	return lo.Filter(all, func(a domain.AppointmentView, _ int) bool { return a.Status == domain.StatusCompleted })
}

func (s *DashboardService) Admin() (AdminDashboard, error) {
	users, err := s.Users.Stats()
	if err != nil {
		return AdminDashboard{}, err
	}
	stats, err := s.Apts.AllStats()
	if err != nil {
		return AdminDashboard{}, err
	}
	rev, err := s.Revenue.Platform()
	if err != nil {
		return AdminDashboard{}, err
	}
	recent, err := s.Users.List(repos.UserFilter{})
	if err != nil {
		return AdminDashboard{}, err
	}
	return AdminDashboard{
		Users:        users,
		Appointments: stats,
		Revenue:      rev.Gross,
		Commission:   rev.Commission,
		Recent:       lo.Slice(recent, 0, 5),
	}, nil
}

func (s *DashboardService) Provider(providerID string) (ProviderDashboard, error) {
	all, err := s.Apts.Apts.ByProvider(providerID)
	if err != nil {
		return ProviderDashboard{}, err
	}
	reviews, err := s.Reviews.ByProvider(providerID)
	if err != nil {
		return ProviderDashboard{}, err
	}
	return ProviderDashboard{
		TotalAppointments: len(all),
		Earnings:          round2(lo.SumBy(completedOf(all), func(a domain.AppointmentView) float64 { return a.Earnings() })),
		UniqueClients:     len(lo.UniqBy(all, func(a domain.AppointmentView) string { return a.ClientID })),
		AverageRating:     AverageRating(reviews),
		ReviewCount:       len(reviews),
		Upcoming:          s.Apts.Upcoming(all, 5),
		RecentReviews:     lo.Slice(reviews, 0, 3),
	}, nil
}

// segmentsOf lists every segment the client falls in; a regular can also be VIP.
func segmentsOf(c ClientSummary) []string {
	out := []string{}
	if c.Appointments >= 3 {
		out = append(out, SegmentRegular)
	}
	if c.Appointments == 1 {
		out = append(out, SegmentNew)
	}
	if c.TotalSpent >= vipSpend {
		out = append(out, SegmentVIP)
	}
	return out
}

// Clients summarises everyone who has booked with the provider, most recent
// visit first, optionally narrowed to a segment and a name or email search.
// Counts cover all clients.
func (s *DashboardService) Clients(providerID, segment, q string) (ProviderClients, error) {
	all, err := s.Apts.Apts.ByProvider(providerID)
	if err != nil {
		return ProviderClients{}, err
	}
	reviews, err := s.Reviews.ByProvider(providerID)
	if err != nil {
		return ProviderClients{}, err
	}
	reviewsBy := lo.CountValuesBy(reviews, func(r domain.ReviewView) string { return r.ClientID })

	var rows []ClientSummary
	for clientID, apts := range lo.GroupBy(all, func(a domain.AppointmentView) string { return a.ClientID }) {
		done := completedOf(apts)
		c := ClientSummary{
			ClientID:     clientID,
			Name:         apts[0].ClientName,
			Email:        apts[0].ClientEmail,
			Phone:        apts[0].ClientPhone,
			Appointments: len(apts),
			Completed:    len(done),
			TotalSpent:   round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.TotalAmount })),
			LastVisit:    lo.MaxBy(apts, func(a, b domain.AppointmentView) bool { return a.AppointmentDate > b.AppointmentDate }).AppointmentDate,
			Reviews:      reviewsBy[clientID],
		}
		c.Segments = segmentsOf(c)
		rows = append(rows, c)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].LastVisit != rows[j].LastVisit {
			return rows[i].LastVisit > rows[j].LastVisit
		}
		return rows[i].Name < rows[j].Name
	})

	out := ProviderClients{Segment: segment, Q: q}
	for _, c := range rows {
		out.Regular += lo.Ternary(lo.Contains(c.Segments, SegmentRegular), 1, 0)
		out.New += lo.Ternary(lo.Contains(c.Segments, SegmentNew), 1, 0)
		out.VIP += lo.Ternary(lo.Contains(c.Segments, SegmentVIP), 1, 0)
		out.Revenue += c.TotalSpent
	}
	out.Total = len(rows)
	out.Revenue = round2(out.Revenue)
	needle := strings.ToLower(strings.TrimSpace(q))
	out.Clients = lo.Filter(rows, func(c ClientSummary, _ int) bool {
		if segment != "" && !lo.Contains(c.Segments, segment) {
			return false
		}
		return needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle)
	})
	return out, nil
}

func (s *DashboardService) Client(clientID string) (ClientDashboard, error) {
	all, err := s.Apts.Apts.ByClient(clientID)
	if err != nil {
		return ClientDashboard{}, err
	}
	favs, err := s.Favs.List(clientID)
	if err != nil {
		return ClientDashboard{}, err
	}
	return ClientDashboard{
		TotalAppointments: len(all),
		Completed:         len(completedOf(all)),
		Favorites:         len(favs),
		Upcoming:          s.Apts.Upcoming(all, 5),
	}, nil
}

func (s *DashboardService) ProfileStats(u *domain.User) (ProfileStats, error) {
	switch u.Role {
	case domain.RoleProvider:
		all, err := s.Apts.Apts.ByProvider(u.ID)
		if err != nil {
			return ProfileStats{}, err
		}
		reviews, err := s.Reviews.ByProvider(u.ID)
		if err != nil {
			return ProfileStats{}, err
		}
		done := completedOf(all)
		return ProfileStats{
			TotalAppointments:     len(all),
			CompletedAppointments: len(done),
			TotalEarnings:         round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.Earnings() })),
			AverageRating:         AverageRating(reviews),
			TotalReviews:          len(reviews),
		}, nil
	case domain.RoleClient:
		all, err := s.Apts.Apts.ByClient(u.ID)
		if err != nil {
			return ProfileStats{}, err
		}
		done := completedOf(all)
		return ProfileStats{
			TotalAppointments:     len(all),
			CompletedAppointments: len(done),
			TotalSpent:            round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.TotalAmount })),
		}, nil
	}
	return ProfileStats{}, nil
}
