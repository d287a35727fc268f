package services

import (
	"sort"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

type RevenueService struct {
	Apts *repos.AppointmentRepo
}

func NewRevenueService(apts *repos.AppointmentRepo) *RevenueService {
	return &RevenueService{Apts: apts}
}

// RevenueLine is one bucket of completed appointments.
type RevenueLine struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Gross      float64 `json:"gross"`
	Commission float64 `json:"commission"`
	Earnings   float64 `json:"earnings"`
}

type PlatformRevenue struct {
	Gross           float64                  `json:"gross"`
	Commission      float64                  `json:"commission"`
	Earnings        float64                  `json:"earnings"`
	Completed       int                      `json:"completed"`
	ByProvider      []RevenueLine            `json:"by_provider"`
	ByCategory      []RevenueLine            `json:"by_category"`
	ByMonth         []RevenueLine            `json:"by_month"`
	TopTransactions []domain.AppointmentView `json:"top_transactions"`
}

type ProviderRevenue struct {
	Gross      float64                  `json:"gross"`
	Commission float64                  `json:"commission"`
	Earnings   float64                  `json:"earnings"`
	Completed  int                      `json:"completed"`
	ByService  []RevenueLine            `json:"by_service"`
	ByMonth    []RevenueLine            `json:"by_month"`
	Recent     []domain.AppointmentView `json:"recent"`
}

func bucket(apts []domain.AppointmentView, key func(domain.AppointmentView) (string, string)) []RevenueLine {
	lines := map[string]*RevenueLine{}
	for _, a := range apts {
		k, label := key(a)
		l, ok := lines[k]
		if !ok {
			l = &RevenueLine{Key: k, Label: label}
			lines[k] = l
		}
		l.Count++
		l.Gross += a.TotalAmount
		l.Commission += a.CommissionAmount
		l.Earnings += a.Earnings()
	}
	return lo.MapToSlice(lines, func(_ string, l *RevenueLine) RevenueLine {
		l.Gross, l.Commission, l.Earnings = round2(l.Gross), round2(l.Commission), round2(l.Earnings)
		return *l
	})
}

func byCommission(lines []RevenueLine) []RevenueLine {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Commission != lines[j].Commission {
			return lines[i].Commission > lines[j].Commission
		}
		return lines[i].Label < lines[j].Label
	})
	return lines
}

func byKey(lines []RevenueLine) []RevenueLine {
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key < lines[j].Key })
	return lines
}

func monthKey(a domain.AppointmentView) (string, string) {
	t := a.When()
	return t.Format("2006-01"), t.Format("January 2006")
}

func (s *RevenueService) Platform() (PlatformRevenue, error) {
	done, err := s.Apts.Completed()
	if err != nil {
		return PlatformRevenue{}, err
	}
	top := append([]domain.AppointmentView(nil), done...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].CommissionAmount > top[j].CommissionAmount })
	return PlatformRevenue{
		Gross:      round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.TotalAmount })),
		Commission: round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.CommissionAmount })),
		Earnings:   round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.Earnings() })),
		Completed:  len(done),
		ByProvider: lo.Slice(byCommission(bucket(done, func(a domain.AppointmentView) (string, string) {
			return a.ProviderID, a.ProviderName
		})), 0, 10),
		ByCategory: byCommission(bucket(done, func(a domain.AppointmentView) (string, string) {
			return a.CategoryID, a.CategoryName
		})),
		ByMonth:         byKey(bucket(done, monthKey)),
		TopTransactions: lo.Slice(top, 0, 10),
	}, nil
}

func (s *RevenueService) Provider(providerID string) (ProviderRevenue, error) {
	done, err := s.Apts.List(repos.AppointmentFilter{
		ProviderID: providerID,
		Statuses:   []domain.AppointmentStatus{domain.StatusCompleted},
	})
	if err != nil {
		return ProviderRevenue{}, err
	}
	return ProviderRevenue{
		Gross:      round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.TotalAmount })),
		Commission: round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.CommissionAmount })),
		Earnings:   round2(lo.SumBy(done, func(a domain.AppointmentView) float64 { return a.Earnings() })),
		Completed:  len(done),
		ByService: byCommission(bucket(done, func(a domain.AppointmentView) (string, string) {
			return a.ServiceID, a.ServiceName
		})),
		ByMonth: byKey(bucket(done, monthKey)),
		Recent:  lo.Slice(done, 0, 10),
	}, nil
}
