package session

import (
	"fmt"

	"abdig/internal/roster"
)

// View identifies the screen currently shown.
type View string

const (
	ViewLogin             View = "LOGIN"
	ViewDashboard         View = "DASHBOARD"
	ViewManageUsers       View = "MANAGE_USERS"
	ViewTeacherAttendance View = "TEACHER_ATTENDANCE"
	ViewClassAttendance   View = "CLASS_ATTENDANCE"
	ViewStudentHistory    View = "STUDENT_HISTORY"
	ViewReports           View = "REPORTS"
	ViewSettings          View = "SETTINGS"
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	View  View   `json:"id"`
	Label string `json:"label"`
}

// Menu derives the sidebar for u. It also defines which views u may open.
func Menu(u roster.User) []MenuItem {
	switch u.Role {
	case roster.RoleAdmin:
		return []MenuItem{
			{View: ViewDashboard, Label: "Dashboard"},
			{View: ViewManageUsers, Label: "Data Pengguna"},
			{View: ViewReports, Label: "Laporan"},
			{View: ViewSettings, Label: "Pengaturan"},
		}
	case roster.RoleTeacher:
		items := []MenuItem{{View: ViewTeacherAttendance, Label: "Absen Saya"}}
		if u.AssignedClass != "" {
			items = append(items, MenuItem{
				View:  ViewClassAttendance,
				Label: fmt.Sprintf("Wali Kelas (%s)", u.AssignedClass),
			})
		}
		return items
	case roster.RoleStudent:
		return []MenuItem{{View: ViewStudentHistory, Label: "Riwayat Absen"}}
	default:
		return nil
	}
}

// DefaultView is the view shown right after login.
func DefaultView(role roster.Role) View {
	switch role {
	case roster.RoleAdmin:
		return ViewDashboard
	case roster.RoleTeacher:
		return ViewTeacherAttendance
	case roster.RoleStudent:
		return ViewStudentHistory
	default:
		return ViewLogin
	}
}

// Permitted reports whether v is in the menu of u.
func Permitted(u roster.User, v View) bool {
	for _, item := range Menu(u) {
		if item.View == v {
			return true
		}
	}
	return false
}
