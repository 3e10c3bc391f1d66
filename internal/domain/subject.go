package domain

// Subject is a quiz topic offered to the user.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultSubjectID is used when a requested subject is unknown.
const DefaultSubjectID = "math"

var subjects = []Subject{
	{ID: "math", Name: "Mathematics"},
	{ID: "science", Name: "Science"},
	{ID: "english", Name: "English"},
	{ID: "history", Name: "History"},
	{ID: "geography", Name: "Geography"},
	{ID: "physics", Name: "Physics"},
	{ID: "chemistry", Name: "Chemistry"},
	{ID: "biology", Name: "Biology"},
}

// Subjects returns the subject catalog in display order.
func Subjects() []Subject {
	return append([]Subject(nil), subjects...)
}

// SubjectByID looks up a subject, falling back to Mathematics.
func SubjectByID(id string) Subject {
	for _, s := range subjects {
		if s.ID == id {
			return s
		}
	}
	return subjects[0]
}
