package model

type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SubjectIndex строит отображение subjectID -> Subject
func SubjectIndex(subjects []*Subject) map[int64]*Subject {
	index := make(map[int64]*Subject, len(subjects))
	for _, s := range subjects {
		index[s.ID] = s
	}
	return index
}
