package repository

import "errors"

// ErrDuplicate возвращается когда вставка нарушает уникальное ограничение
// (повторная запись на ту же пару студент-репетитор, второй отзыв и т.п.)
var ErrDuplicate = errors.New("duplicate record")
