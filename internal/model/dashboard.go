package model

type Attendance struct {
	ID       int
	UserID   int
	Attended int
	Total    int
}

type Note struct {
	ID       int
	UserID   int
	NoteType string
	Count    int
}

type Subject struct {
	ID     int
	UserID int
	Name   string
}

const (
	StatusComplete = "Complete"
	StatusPending  = "Pending"
)

type TimetableEntry struct {
	ID       int
	UserID   int
	Subject  string
	Date     string
	Time     string
	Status   string
	Duration string
}

type TestScore struct {
	ID      int
	UserID  int
	Subject string
	Lesson  string
	Score   float64
}

type Notice struct {
	ID       int
	UserID   int
	Title    string
	ImageURL string
	Date     string
}

type Poll struct {
	ID        int
	UserID    int
	Title     string
	Professor string
	EndTime   string
}

type PollParticipant struct {
	ID             int
	PollID         int
	ParticipantImg string
}

type UpcomingTask struct {
	ID     int
	UserID int
	Code   string
	Title  string
	Time   string
}

// ScorePoint is one day of a subject's score activity series.
type ScorePoint struct {
	ID      int
	UserID  int
	Subject string
	Date    string
	Score   int
}

// DashboardRows are the raw widget rows for one user, read from a single snapshot.
type DashboardRows struct {
	User             *User
	Attendance       *Attendance
	Notes            []Note
	Timetable        []TimetableEntry
	TestScores       []TestScore
	Notices          []Notice
	Poll             *Poll
	PollParticipants []PollParticipant
	Subjects         []Subject
	UpcomingTasks    []UpcomingTask
	Queries          []Query
	Answers          []Answer
}
