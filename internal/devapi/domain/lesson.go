package domain

import "time"

// Activity is the kind of lesson a course teaches.
type Activity string

const (
	ActivitySwimming Activity = "swimming"
	ActivityMusic    Activity = "music"
)

func (a Activity) Valid() bool {
	return a == ActivitySwimming || a == ActivityMusic
}

type Student struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth string    `json:"date_of_birth"` // YYYY-MM-DD
	Guardian    string    `json:"guardian"`      // username of the parent account
	CreatedAt   time.Time `json:"created_at"`
}

type Course struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Activity  Activity  `json:"activity"`
	Level     string    `json:"level,omitempty"`
	Capacity  int       `json:"capacity"`
	Teacher   string    `json:"teacher,omitempty"` // username
	CreatedAt time.Time `json:"created_at"`
}
