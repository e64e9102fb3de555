package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"studentportal/internal/model"
	"studentportal/internal/repository"
)

// FallbackUserID is shown when the users table is empty.
const FallbackUserID = 1

const fallbackUserName = "Student"

// TimestampLayout is how stored creation times are presented.
const TimestampLayout = "2006-01-02 15:04:05"

// canonicalSubjects is the display order of the subject list.
var canonicalSubjects = []string{"Mathematics", "Chemistry", "Physics", "Economics", "Biology"}

type DashboardView struct {
	UserName      string         `json:"user_name"`
	Attendance    AttendanceView `json:"attendance"`
	Notes         map[string]int `json:"notes"`
	Timetable     []TimetableRow `json:"timetable"`
	TestScores    []TestScoreRow `json:"test_scores"`
	NoticeBoard   []NoticeRow    `json:"notice_board"`
	Poll          *PollView      `json:"poll"`
	Subjects      []string       `json:"subjects"`
	UpcomingTasks []TaskRow      `json:"upcoming_tasks"`
	Queries       []QueryView    `json:"queries"`
}

type AttendanceView struct {
	Attended int `json:"attended"`
	Total    int `json:"total"`
}

type TimetableRow struct {
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
}

type TestScoreRow struct {
	Score   float64 `json:"score"`
	Subject string  `json:"subject"`
	Lesson  string  `json:"lesson"`
}

type NoticeRow struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	Date     string `json:"date"`
}

type PollView struct {
	Title        string   `json:"title"`
	Professor    string   `json:"professor"`
	EndTime      string   `json:"end_time"`
	Participants []string `json:"participants"`
}

type TaskRow struct {
	Code  string `json:"code"`
	Title string `json:"title"`
	Time  string `json:"time"`
}

type QueryView struct {
	ID        int          `json:"id"`
	Tags      []string     `json:"tags"`
	Brief     string       `json:"brief"`
	CreatedAt string       `json:"created_at"`
	Answers   []AnswerView `json:"answers"`
}

type AnswerView struct {
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type DashboardService struct {
	reader repository.DashboardReader
}

func NewDashboardService(reader repository.DashboardReader) *DashboardService {
	return &DashboardService{reader: reader}
}

// Build assembles the dashboard of userID from one consistent read.
func (s *DashboardService) Build(ctx context.Context, userID int) (*DashboardView, error) {
	rows, err := s.reader.LoadDashboard(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load dashboard for user %d: %w", userID, err)
	}
	return assemble(rows), nil
}

func assemble(rows *model.DashboardRows) *DashboardView {
	v := &DashboardView{
		UserName:      fallbackUserName,
		Notes:         make(map[string]int, len(rows.Notes)),
		Timetable:     make([]TimetableRow, 0, len(rows.Timetable)),
		TestScores:    make([]TestScoreRow, 0, len(rows.TestScores)),
		NoticeBoard:   make([]NoticeRow, 0, len(rows.Notices)),
		UpcomingTasks: make([]TaskRow, 0, len(rows.UpcomingTasks)),
		Queries:       make([]QueryView, 0, len(rows.Queries)),
	}

	if rows.User != nil {
		v.UserName = rows.User.FullName()
	}
	if rows.Attendance != nil {
		v.Attendance = AttendanceView{Attended: rows.Attendance.Attended, Total: rows.Attendance.Total}
	}
	for _, n := range rows.Notes {
		v.Notes[n.NoteType] = n.Count
	}
	for _, e := range rows.Timetable {
		v.Timetable = append(v.Timetable, TimetableRow{e.Subject, e.Date, e.Time, e.Status, e.Duration})
	}
	for _, ts := range rows.TestScores {
		v.TestScores = append(v.TestScores, TestScoreRow{Score: ts.Score, Subject: ts.Subject, Lesson: ts.Lesson})
	}
	for _, n := range rows.Notices {
		v.NoticeBoard = append(v.NoticeBoard, NoticeRow{n.Title, n.ImageURL, n.Date})
	}
	if rows.Poll != nil {
		p := &PollView{
			Title:        rows.Poll.Title,
			Professor:    rows.Poll.Professor,
			EndTime:      rows.Poll.EndTime,
			Participants: make([]string, 0, len(rows.PollParticipants)),
		}
		for _, pp := range rows.PollParticipants {
			p.Participants = append(p.Participants, pp.ParticipantImg)
		}
		v.Poll = p
	}
	v.Subjects = orderSubjects(rows.Subjects)
	for _, t := range rows.UpcomingTasks {
		v.UpcomingTasks = append(v.UpcomingTasks, TaskRow{t.Code, t.Title, t.Time})
	}

	answers := make(map[int][]AnswerView)
	for _, a := range rows.Answers {
		answers[a.QueryID] = append(answers[a.QueryID], AnswerView{Text: a.Text, CreatedAt: a.CreatedAt.Format(TimestampLayout)})
	}
	for _, q := range rows.Queries {
		v.Queries = append(v.Queries, QueryView{
			ID:        q.ID,
			Tags:      RenderTags(q.SpecialMentions),
			Brief:     q.Brief,
			CreatedAt: q.CreatedAt.Format(TimestampLayout),
			Answers:   answers[q.ID],
		})
	}
	return v
}

// orderSubjects keeps the user's subjects that appear in the canonical list, in canonical order.
func orderSubjects(subjects []model.Subject) []string {
	out := make([]string, 0, len(canonicalSubjects))
	for _, name := range canonicalSubjects {
		if slices.ContainsFunc(subjects, func(s model.Subject) bool { return s.Name == name }) {
			out = append(out, name)
		}
	}
	return out
}

// RenderTags turns stored special mentions into '#'-prefixed tags. Anything other than a JSON
// array yields no tags; falsy elements (null, false, 0, "", [], {}) are skipped.
func RenderTags(raw json.RawMessage) []string {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var items []any
	if err := dec.Decode(&items); err != nil {
		return []string{}
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := mentionText(it); ok {
			tags = append(tags, "#"+strings.TrimSpace(s))
		}
	}
	return tags
}

func mentionText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case bool:
		return "True", x
	case json.Number:
		f, err := x.Float64()
		return x.String(), err != nil || f != 0
	case []any:
		b, _ := json.Marshal(x)
		return string(b), len(x) > 0
	case map[string]any:
		b, _ := json.Marshal(x)
		return string(b), len(x) > 0
	}
	return fmt.Sprint(v), true
}
