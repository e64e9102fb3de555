package seed

import (
	"math"

	"studentportal/internal/model"
)

// SampleUser is one of the fixed demo accounts.
type SampleUser struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

var SampleUsers = []SampleUser{
	{"Alex", "Johnson", "alex.johnson@email.com", "+1 555-0101", "password123"},
	{"Maria", "Garcia", "maria.garcia@email.com", "+1 555-0102", "securepass"},
	{"David", "Chen", "david.chen@email.com", "+1 555-0103", "davidpass"},
	{"Sarah", "Williams", "sarah.williams@email.com", "+1 555-0104", "sarahpw"},
	{"Michael", "Brown", "michael.brown@email.com", "+1 555-0105", "michaelpw"},
	{"Emily", "Davis", "emily.davis@email.com", "+1 555-0106", "emilypw"},
	{"James", "Miller", "james.miller@email.com", "+1 555-0107", "jamespw"},
	{"Lisa", "Wilson", "lisa.wilson@email.com", "+1 555-0108", "lisapw"},
	{"Robert", "Taylor", "robert.taylor@email.com", "+1 555-0109", "robertpw"},
	{"Jennifer", "Anderson", "jennifer.anderson@email.com", "+1 555-0110", "jenniferpw"},
}

var subjectNames = []string{"Mathematics", "Physics", "Chemistry", "Economics", "Biology"}

const classDuration = "50 Minutes"

var timetableRows = []model.TimetableEntry{
	{Subject: "Mathematics", Date: "18-Apr-2022", Time: "10:00 am", Status: model.StatusComplete},
	{Subject: "Physics", Date: "18-Apr-2022", Time: "11:05 pm", Status: model.StatusComplete},
	{Subject: "Chemistry", Date: "18-Apr-2022", Time: "02:00 pm", Status: model.StatusComplete},
	{Subject: "Physics", Date: "19-Apr-2022", Time: "10:00 am", Status: model.StatusPending},
	{Subject: "Economics", Date: "19-Apr-2022", Time: "02:00 pm", Status: model.StatusPending},
	{Subject: "Physics", Date: "20-Apr-2022", Time: "02:00 pm", Status: model.StatusPending},
	{Subject: "Mathematics", Date: "20-Apr-2022", Time: "02:00 pm", Status: model.StatusPending},
}

// testScoreRows base score and per-user step
var testScoreRows = []struct {
	base, step      float64
	subject, lesson string
}{
	{8.5, -0.2, "Physics", "Lesson 4"},
	{6.0, 0.3, "Chemistry", "Lesson 2"},
	{7.2, 0.1, "Maths", "Lesson 2"},
	{9.0, -0.1, "Economics", "Lesson 2"},
	{8.0, 0.2, "Biology", "Lesson 2"},
	{8.8, -0.1, "Biology", "Lesson 6"},
	{6.8, 0.2, "Biology", "Lesson 5"},
}

var noticeRows = []model.Notice{
	{Title: "Weekly Maths MCQs & General", ImageURL: "https://images.unsplash.com/photo-1506744038136-46273834b3fb?auto=format&fit=facearea&w=48&h=48", Date: "21 Apr 2022"},
	{Title: "Weekly Physics MCQs", ImageURL: "https://images.unsplash.com/photo-1465101046530-73398c7f28ca?auto=format&fit=facearea&w=48&h=48", Date: "22 Apr 2022"},
	{Title: "Chemistry Quiz-22", ImageURL: "https://images.unsplash.com/photo-1519125323398-675f0ddb6308?auto=format&fit=facearea&w=48&h=48", Date: "22 Apr 2022"},
	{Title: "Biology Special Classes", ImageURL: "https://images.unsplash.com/photo-1462331940025-496dfbfc7564?auto=format&fit=facearea&w=48&h=48", Date: "25 Apr 2022"},
}

var pollTemplate = model.Poll{Title: "Maths Extra Class Poll", Professor: "Prof. Joshi", EndTime: "22 Apr 2022, 12:30 pm"}

var pollParticipantImages = []string{
	"https://randomuser.me/api/portraits/men/31.jpg",
	"https://randomuser.me/api/portraits/women/32.jpg",
	"https://randomuser.me/api/portraits/men/33.jpg",
	"https://randomuser.me/api/portraits/women/34.jpg",
	"https://randomuser.me/api/portraits/men/35.jpg",
}

var taskRows = []model.UpcomingTask{
	{Code: "P", Title: "Metals Purification Methods", Time: "08:30 am, 22 Apr 2022"},
	{Code: "M", Title: "Maths Algorithm", Time: "08:30 am, 22 Apr 2022"},
	{Code: "D", Title: "DNA & RNA Modifications", Time: "08:30 am, 22 Apr 2022"},
	{Code: "F", Title: "Fundamental Physics MCQs", Time: "08:30 am, 22 Apr 2022"},
}

// AttendedFor is the attended count of the user at position idx.
func AttendedFor(idx int) int {
	if v := 254 - idx*10; v > 0 {
		return v
	}
	return 100 + idx*5
}

const totalClasses = 300

func notesFor(userID, idx int) []model.Note {
	return []model.Note{
		{UserID: userID, NoteType: "Personalised Notes", Count: 254 - idx*5},
		{UserID: userID, NoteType: "Subject Planner", Count: 25 + idx},
		{UserID: userID, NoteType: "Notes & PPT", Count: 50 + idx*2},
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
