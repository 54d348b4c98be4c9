package formatting

func pluralize(count int, one, few, many string) string {
	if count < 0 {
		count = -count
	}
	if count%10 == 1 && count%100 != 11 {
		return one
	}
	if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
		return few
	}
	return many
}

// PluralizeReservations возвращает правильное склонение слова "запись"
func PluralizeReservations(count int) string {
	return pluralize(count, "запись", "записи", "записей")
}

// PluralizeReviews возвращает правильное склонение слова "отзыв"
func PluralizeReviews(count int) string {
	return pluralize(count, "отзыв", "отзыва", "отзывов")
}

// PluralizeStudents возвращает правильное склонение слова "студент"
func PluralizeStudents(count int) string {
	return pluralize(count, "студент", "студента", "студентов")
}
