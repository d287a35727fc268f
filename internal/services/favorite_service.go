package services

import (
	"strings"

	"github.com/samber/lo"

	"servicehub/internal/domain"
	"servicehub/internal/repos"
)

type FavoriteService struct {
	Favs  *repos.FavoriteRepo
	Svcs  *repos.ServiceRepo
	Clock Clock
}

func NewFavoriteService(favs *repos.FavoriteRepo, svcs *repos.ServiceRepo) *FavoriteService {
	return &FavoriteService{Favs: favs, Svcs: svcs}
}

type FavoriteStats struct {
	Count      int `json:"count"`
	Providers  int `json:"providers"`
	Categories int `json:"categories"`
}

// List returns the client's favorites matching q (service, provider or
// category name) with stats over the unfiltered set.
func (s *FavoriteService) List(clientID, q string) ([]repos.FavoriteRow, FavoriteStats, error) {
	all, err := s.Favs.List(clientID)
	if err != nil {
		return nil, FavoriteStats{}, err
	}
	stats := FavoriteStats{
		Count:      len(all),
		Providers:  len(lo.Uniq(lo.Map(all, func(f repos.FavoriteRow, _ int) string { return f.ProviderID }))),
		Categories: len(lo.Uniq(lo.Map(all, func(f repos.FavoriteRow, _ int) string { return f.CategoryID }))),
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return all, stats, nil
	}
	rows := lo.Filter(all, func(f repos.FavoriteRow, _ int) bool {
		return strings.Contains(strings.ToLower(f.ServiceName), q) ||
			strings.Contains(strings.ToLower(f.ProviderName), q) ||
			strings.Contains(strings.ToLower(f.CategoryName), q)
	})
	return rows, stats, nil
}

// Toggle adds the service to favorites or removes it; it reports whether the
// service is a favorite afterwards.
func (s *FavoriteService) Toggle(clientID, serviceID string) (bool, error) {
	if _, err := s.Favs.Find(clientID, serviceID); err == nil {
		return false, notFound(s.Favs.Remove(clientID, serviceID))
	} else if !repos.IsNotFound(err) {
		return false, err
	}
	if _, err := s.Svcs.Get(serviceID); err != nil {
		return false, notFound(err)
	}
	err := s.Favs.Add(domain.Favorite{
		ID:        newID(),
		ClientID:  clientID,
		ServiceID: serviceID,
		CreatedAt: s.Clock.stamp(),
	})
	return err == nil, err
}

func (s *FavoriteService) Remove(clientID, serviceID string) error {
	return notFound(s.Favs.Remove(clientID, serviceID))
}

// IDs returns the set of service ids the client has favorited.
func (s *FavoriteService) IDs(clientID string) (map[string]bool, error) {
	all, err := s.Favs.List(clientID)
	if err != nil {
		return nil, err
	}
	return lo.SliceToMap(all, func(f repos.FavoriteRow) (string, bool) { return f.ServiceID, true }), nil
}
