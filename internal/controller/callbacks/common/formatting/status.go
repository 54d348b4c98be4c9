package formatting

import "github.com/Freeeeeet/tutor_reservations/internal/model"

// StatusDisplay представляет отображение статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

// ReservationStatus возвращает emoji и текст для статуса записи
func ReservationStatus(r model.Reservation) StatusDisplay {
	if r.Approved {
		return StatusDisplay{"✅", "Подтверждена"}
	}
	return StatusDisplay{"⏳", "Ожидает подтверждения"}
}

// AvailabilityStatus возвращает отображение доступности репетитора
func AvailabilityStatus(available bool) StatusDisplay {
	if available {
		return StatusDisplay{"🟢", "Принимает записи"}
	}
	return StatusDisplay{"⚫️", "Не принимает записи"}
}

// StudyModes переводит форматы занятий для вывода
func StudyModes(modes []model.StudyMode) []string {
	names := map[model.StudyMode]string{
		model.StudyModeInPerson: "очно",
		model.StudyModeOnline:   "онлайн",
	}

	out := make([]string, 0, len(modes))
	for _, m := range modes {
		if name, ok := names[m]; ok {
			out = append(out, name)
		} else {
			out = append(out, string(m))
		}
	}
	return out
}
