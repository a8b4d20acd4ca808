package model

import "time"

// RawOccurrence is one upstream record exactly as the plan service returns
// it. The service is loose about which fields it fills in: depending on the
// query kind (album number vs. teacher/room search) the subject may arrive in
// "subject" or "title", the teacher in "worker_title" or "worker", and the
// group label in "group_name" or "tok_name". Only Start and End are required;
// everything else is coalesced during normalization and never inspected
// again downstream.
type RawOccurrence struct {
	Start             string `json:"start"`
	End               string `json:"end"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	Subject           string `json:"subject"`
	WorkerTitle       string `json:"worker_title"`
	Worker            string `json:"worker"`
	LessonForm        string `json:"lesson_form"`
	LessonFormShort   string `json:"lesson_form_short"`
	GroupName         string `json:"group_name"`
	TokName           string `json:"tok_name"`
	Room              string `json:"room"`
	LessonStatus      string `json:"lesson_status"`
	LessonStatusShort string `json:"lesson_status_short"`
}

// SessionPeriod marks a named span of the academic calendar (e.g. exam
// session, holidays). Passed through into the schedule unmodified.
type SessionPeriod struct {
	Key   string `json:"key"`
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`   // YYYY-MM-DD
}

// Category is the coarse kind of a class occurrence, derived by the
// classifier from the record's status and form fields.
type Category string

const (
	CategoryExam           Category = "exam"
	CategoryCancelled      Category = "cancelled"
	CategoryRemote         Category = "remote"
	CategoryLaboratory     Category = "laboratory"
	CategoryAuditory       Category = "auditory"
	CategoryLecture        Category = "lecture"
	CategoryCredit         Category = "credit"
	CategoryProject        Category = "project"
	CategorySeminar        Category = "seminar"
	CategoryDiploma        Category = "diploma"
	CategoryLanguage       Category = "language"
	CategoryConversational Category = "conversational"
	CategoryConsultation   Category = "consultation"
	CategoryFieldWork      Category = "fieldwork"
	CategoryClass          Category = "class"
)

// Event is the canonical, fully-typed form of a RawOccurrence after
// normalization and classification. Nothing downstream re-inspects raw
// field aliases.
type Event struct {
	Subject string `json:"subject"`
	Room    string `json:"room"`
	Teacher string `json:"teacher"`
	Group   string `json:"group"`

	Category      Category `json:"category"`
	CategoryLabel string   `json:"category_label"`

	// GroupKey correlates occurrences of the same subject across views
	// (attendance/category state). First non-empty of {subject, title}.
	GroupKey string `json:"group_key"`

	// Start / End are in the configured display timezone.
	// End is floored so the event spans at least 15 minutes.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartMinute returns the event's offset from midnight in minutes.
func (e Event) StartMinute() int {
	return e.Start.Hour()*60 + e.Start.Minute()
}

// EndMinute returns the event's end offset from midnight in minutes.
func (e Event) EndMinute() int {
	return e.End.Hour()*60 + e.End.Minute()
}

// PositionedEvent is an Event annotated with horizontal layout attributes so
// that temporally overlapping events render side by side.
type PositionedEvent struct {
	Event

	StartMin int     `json:"start_min"`
	EndMin   int     `json:"end_min"`
	LeftPct  float64 `json:"left_pct"`
	WidthPct float64 `json:"width_pct"`
}

// DayColumn is one calendar day with its laid-out events, ordered by start
// time, then end time, then subject.
type DayColumn struct {
	Date   time.Time         `json:"date"`
	Events []PositionedEvent `json:"events"`
}

// MonthCell is one cell of the 6x7 month grid.
type MonthCell struct {
	Date      time.Time `json:"date"`
	HasEvents bool      `json:"has_events"`
	InMonth   bool      `json:"in_month"`
}

// Diagnostics summarizes what went into a computed schedule.
type Diagnostics struct {
	RawCount      int      `json:"raw_count"`
	DatesWithData []string `json:"dates_with_data"`
	QueryID       string   `json:"query_id"`
}

// Schedule is the final computed result for one view request.
type Schedule struct {
	Mode   string    `json:"mode"`
	Anchor time.Time `json:"anchor"`

	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`

	// Days is filled for day/week modes, Grid for month mode.
	Days []DayColumn `json:"days,omitempty"`
	Grid []MonthCell `json:"grid,omitempty"`

	Prev  time.Time `json:"prev"`
	Next  time.Time `json:"next"`
	Today time.Time `json:"today"`

	Header string `json:"header"`

	Sessions    []SessionPeriod `json:"sessions,omitempty"`
	Diagnostics Diagnostics     `json:"diagnostics"`
}
