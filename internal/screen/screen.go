package screen

import (
	"fmt"
	"time"

	"abdig/internal/attendance"
	"abdig/internal/roster"
	"abdig/internal/session"
)

const (
	appTitle          = "ABDIG"
	appSubtitle       = "Absensi Digital Terintegrasi"
	noSelfCheckIn     = "Anda tidak memiliki izin untuk melakukan absen mandiri."
	underConstruction = "Modul ini sedang dalam pengembangan."
	lateTolerance     = 15 * time.Minute
)

// Screen is the view model of whatever view is current. Exactly one of the
// view-specific fields is set.
type Screen struct {
	View              session.View       `json:"view"`
	Header            *Header            `json:"header,omitempty"`
	Menu              []session.MenuItem `json:"menu,omitempty"`
	Login             *Login             `json:"login,omitempty"`
	Dashboard         *Dashboard         `json:"dashboard,omitempty"`
	TeacherAttendance *TeacherAttendance `json:"teacher_attendance,omitempty"`
	ClassAttendance   *ClassAttendance   `json:"class_attendance,omitempty"`
	Reports           *Reports           `json:"reports,omitempty"`
	StudentHistory    *StudentHistory    `json:"student_history,omitempty"`
	Placeholder       *Placeholder       `json:"placeholder,omitempty"`
}

// Header is the top bar of every authenticated screen.
type Header struct {
	SchoolName string `json:"school_name"`
	UserName   string `json:"user_name"`
	RoleLabel  string `json:"role_label"`
	Avatar     string `json:"avatar,omitempty"`
}

type Login struct {
	Title           string `json:"title"`
	Subtitle        string `json:"subtitle"`
	IdentifierLabel string `json:"identifier_label"`
	IdentifierHint  string `json:"identifier_hint"`
	Copyright       string `json:"copyright"`
}

// Card is one dashboard counter; Total is omitted for counters without a denominator.
type Card struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Total *int   `json:"total,omitempty"`
}

// DayBar is one weekday of the weekly attendance chart.
type DayBar struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Hadir int    `json:"hadir"`
	Sakit int    `json:"sakit"`
	Alpha int    `json:"alpha"`
}

type Dashboard struct {
	Title  string   `json:"title"`
	Cards  []Card   `json:"cards"`
	Weekly []DayBar `json:"weekly"`
}

type TeacherAttendance struct {
	Date     string              `json:"date"`
	Time     string              `json:"time"`
	Schedule string              `json:"schedule"`
	History  []attendance.Record `json:"history"`
}

// RollCallRow is a student line on the class roll-call form.
type RollCallRow struct {
	StudentID string            `json:"student_id"`
	Name      string            `json:"name"`
	Avatar    string            `json:"avatar,omitempty"`
	Status    attendance.Status `json:"status"`
}

type ClassAttendance struct {
	Class    string              `json:"class"`
	Date     string              `json:"date"`
	Students []RollCallRow       `json:"students"`
	Statuses []attendance.Status `json:"statuses"`
}

type Reports struct {
	Summary session.Summary     `json:"summary"`
	Log     []attendance.Record `json:"log"`
}

type StudentHistory struct {
	Notice  string              `json:"notice"`
	Records []attendance.Record `json:"records"`
}

type Placeholder struct {
	Message string `json:"message"`
}

// Builder renders screens from the directory, the journal and the school config.
type Builder struct {
	Users   *roster.Directory
	Journal *attendance.Journal
	School  roster.SchoolConfig
}

// Render builds the screen for st at time now.
func (b Builder) Render(st session.State, now time.Time) Screen {
	if st.Session == nil {
		return Screen{View: session.ViewLogin, Login: b.login(now)}
	}
	u := st.Session.User
	out := Screen{
		View: st.View,
		Menu: st.Menu,
		Header: &Header{
			SchoolName: b.School.Name,
			UserName:   u.Name,
			RoleLabel:  u.Role.Label(),
			Avatar:     u.Avatar,
		},
	}
	switch st.View {
	case session.ViewDashboard:
		out.Dashboard = b.dashboard(now)
	case session.ViewTeacherAttendance:
		out.TeacherAttendance = b.teacherAttendance(u, now)
	case session.ViewClassAttendance:
		out.ClassAttendance = b.classAttendance(u, now)
	case session.ViewReports:
		out.Reports = &Reports{Summary: st.Summary, Log: nonNil(b.Journal.All())}
	case session.ViewStudentHistory:
		out.StudentHistory = &StudentHistory{
			Notice:  noSelfCheckIn,
			Records: nonNil(b.Journal.Find(attendance.Query{UserID: u.ID})),
		}
	case session.ViewManageUsers, session.ViewSettings:
		out.Placeholder = &Placeholder{Message: underConstruction}
	}
	return out
}

func (b Builder) login(now time.Time) *Login {
	return &Login{
		Title:           appTitle,
		Subtitle:        appSubtitle,
		IdentifierLabel: "Email / NIP / NISN",
		IdentifierHint:  "admin@abdig.com",
		Copyright:       fmt.Sprintf("© %d ABDIG System. All rights reserved.", now.Year()),
	}
}

func (b Builder) dashboard(now time.Time) *Dashboard {
	date := now.Format(attendance.DateLayout)
	teachers := attendance.Count(b.Journal.Find(attendance.Query{Date: date, Role: roster.RoleTeacher}))
	students := attendance.Count(b.Journal.Find(attendance.Query{Date: date, Role: roster.RoleStudent}))
	all := attendance.Count(b.Journal.Find(attendance.Query{Date: date}))
	totalTeachers := b.Users.CountByRole(roster.RoleTeacher)
	totalStudents := b.Users.CountByRole(roster.RoleStudent)

	return &Dashboard{
		Title: "Dashboard Overview",
		Cards: []Card{
			{Label: "Guru Hadir", Value: teachers.Present, Total: &totalTeachers},
			{Label: "Siswa Hadir", Value: students.Present, Total: &totalStudents},
			{Label: "Izin / Sakit", Value: all.Permitted + all.Sick},
			{Label: "Alpha", Value: all.Alpha},
		},
		Weekly: b.weekly(now),
	}
}

// weekly counts Hadir, Sakit and Alpha for Monday to Friday of the week containing now.
func (b Builder) weekly(now time.Time) []DayBar {
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	bars := make([]DayBar, 0, 5)
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		date := day.Format(attendance.DateLayout)
		t := attendance.Count(b.Journal.Find(attendance.Query{Date: date}))
		bars = append(bars, DayBar{
			Name:  weekdayName(day.Weekday()),
			Date:  date,
			Hadir: t.Present,
			Sakit: t.Sick,
			Alpha: t.Alpha,
		})
	}
	return bars
}

func (b Builder) teacherAttendance(u roster.User, now time.Time) *TeacherAttendance {
	return &TeacherAttendance{
		Date: LongDate(now),
		Time: now.Format(attendance.ClockLayout),
		Schedule: fmt.Sprintf("Jadwal Masuk: %s %s • Toleransi: %d Menit",
			b.School.EntryTime, now.Format("MST"), int(lateTolerance.Minutes())),
		History: nonNil(b.Journal.Find(attendance.Query{UserID: u.ID})),
	}
}

func (b Builder) classAttendance(u roster.User, now time.Time) *ClassAttendance {
	students := b.Users.StudentsInClass(u.AssignedClass)
	rows := make([]RollCallRow, 0, len(students))
	for _, s := range students {
		rows = append(rows, RollCallRow{
			StudentID: s.ID,
			Name:      s.Name,
			Avatar:    s.Avatar,
			Status:    attendance.StatusPresent,
		})
	}
	return &ClassAttendance{
		Class:    u.AssignedClass,
		Date:     LongDate(now),
		Students: rows,
		Statuses: attendance.RollCallStatuses,
	}
}

func nonNil(recs []attendance.Record) []attendance.Record {
	if recs == nil {
		return []attendance.Record{}
	}
	return recs
}
