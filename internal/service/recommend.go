package service

import "github.com/Freeeeeet/tutor_reservations/internal/model"

// DefaultRecommendationLimit - размер списка быстрой записи по умолчанию
const DefaultRecommendationLimit = 3

// SelectRecommendations оставляет доступных репетиторов, к которым студент ещё не записан,
// и обрезает список до limit с сохранением порядка каталога. limit <= 0 - значение по умолчанию
func SelectRecommendations(catalog []*model.TutorProfile, reserved []*model.Reservation, limit int) []*model.TutorProfile {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	taken := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		taken[r.TutorID] = struct{}{}
	}

	picks := make([]*model.TutorProfile, 0, limit)
	for _, t := range catalog {
		if len(picks) == limit {
			break
		}
		if !t.IsAvailable {
			continue
		}
		if _, ok := taken[t.ID]; ok {
			continue
		}
		picks = append(picks, t)
	}

	return picks
}
