package session

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"abdig/internal/attendance"
	"abdig/internal/report"
	"abdig/internal/roster"
)

var wib = time.FixedZone("WIB", 7*60*60)

// newTestController returns a controller fixed at Monday 2024-07-15 07:12 WIB.
func newTestController(t *testing.T) *Controller {
	t.Helper()
	now := time.Date(2024, 7, 15, 7, 12, 0, 0, wib)
	seq := 0
	users := roster.NewDirectory(roster.SeedUsers())
	journal := attendance.NewJournal(attendance.SeedRecords("2024-07-15"))
	return NewController(users, journal, roster.DefaultSchool, wib,
		WithClock(func() time.Time { return now }),
		WithIDs(func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		}),
	)
}

func login(t *testing.T, c *Controller, identifier string) Session {
	t.Helper()
	s, err := c.Login(identifier, "password")
	require.NoError(t, err)
	return s
}

func TestLogin_InitialViewByRole(t *testing.T) {
	cases := []struct {
		identifier string
		want       View
	}{
		{"admin@abdig.com", ViewDashboard},
		{"budi@guru.com", ViewTeacherAttendance},
		{"198502022005012002", ViewTeacherAttendance},
		{"ahmad@siswa.com", ViewStudentHistory},
	}
	for _, tc := range cases {
		t.Run(tc.identifier, func(t *testing.T) {
			c := newTestController(t)
			s := login(t, c, tc.identifier)
			assert.Equal(t, tc.want, s.View)
			st := c.Snapshot()
			assert.Equal(t, tc.want, st.View)
			assert.True(t, Permitted(st.Session.User, st.View))
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newTestController(t)
	_, err := c.Login("admin@abdig.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	st := c.Snapshot()
	assert.Nil(t, st.Session)
	assert.Equal(t, ViewLogin, st.View)
	assert.Empty(t, st.Menu)
}

func TestLogin_ReplacesPreviousSession(t *testing.T) {
	c := newTestController(t)
	first := login(t, c, "admin@abdig.com")
	second := login(t, c, "dewi@siswa.com")

	assert.False(t, c.ActiveSession(first.ID))
	assert.True(t, c.ActiveSession(second.ID))
	assert.Equal(t, "Dewi Lestari", c.Snapshot().Session.User.Name)
}

func TestLogout_ReturnsToLogin(t *testing.T) {
	c := newTestController(t)
	s := login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))

	c.Logout()
	st := c.Snapshot()
	assert.Nil(t, st.Session)
	assert.Equal(t, ViewLogin, st.View)
	assert.Empty(t, st.Menu)
	assert.False(t, c.ActiveSession(s.ID))
	assert.ErrorIs(t, c.Navigate(ViewDashboard), ErrNoSession)
}

func TestNavigate_RejectsOutOfRoleViews(t *testing.T) {
	c := newTestController(t)
	login(t, c, "ahmad@siswa.com")

	err := c.Navigate(ViewDashboard)
	assert.ErrorIs(t, err, ErrViewNotPermitted)
	assert.Equal(t, ViewStudentHistory, c.Snapshot().View)

	c = newTestController(t)
	login(t, c, "siti@guru.com")
	assert.ErrorIs(t, c.Navigate(ViewClassAttendance), ErrViewNotPermitted)

	c = newTestController(t)
	login(t, c, "budi@guru.com")
	require.NoError(t, c.Navigate(ViewClassAttendance))
	assert.Equal(t, ViewClassAttendance, c.Snapshot().View)
}

func TestNavigate_ActiveViewAlwaysInMenu(t *testing.T) {
	all := []View{ViewLogin, ViewDashboard, ViewManageUsers, ViewTeacherAttendance,
		ViewClassAttendance, ViewStudentHistory, ViewReports, ViewSettings, View("BOGUS")}
	for _, who := range []string{"admin@abdig.com", "budi@guru.com", "siti@guru.com", "eko@siswa.com"} {
		c := newTestController(t)
		login(t, c, who)
		for _, v := range all {
			_ = c.Navigate(v)
			st := c.Snapshot()
			assert.True(t, Permitted(st.Session.User, st.View), "%s ended on %s", who, st.View)
		}
	}
}

func TestClockIn_AppendsEveryTime(t *testing.T) {
	c := newTestController(t)
	budi, _ := c.Users().Find("2")
	before := c.Journal().Len()

	r1 := c.ClockIn(budi)
	r2 := c.ClockIn(budi)

	assert.Equal(t, before+2, c.Journal().Len())
	assert.NotEqual(t, r1.ID, r2.ID)
	for _, r := range []attendance.Record{r1, r2} {
		assert.Equal(t, attendance.StatusPresent, r.Status)
		assert.Equal(t, "2024-07-15", r.Date)
		assert.Equal(t, "07:12", r.TimeIn)
		assert.Equal(t, "Budi Santoso (Guru)", r.UserName)
		assert.Equal(t, roster.RoleTeacher, r.UserRole)
	}
	assert.Equal(t, r2.ID, c.Journal().All()[0].ID)
}

func TestSubmitRollCall_BudiScenario(t *testing.T) {
	c := newTestController(t)
	budi, _ := c.Users().Find("2")
	before := c.Journal().Len()

	recs, err := c.SubmitRollCall(budi, []RollCallEntry{
		{StudentID: "4", Status: attendance.StatusPresent},
		{StudentID: "5", Status: attendance.StatusSick},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, before+2, c.Journal().Len())

	ahmad, dewi := recs[0], recs[1]
	assert.Equal(t, "Ahmad Rizki", ahmad.UserName)
	assert.Equal(t, attendance.StatusPresent, ahmad.Status)
	assert.Equal(t, "07:00", ahmad.TimeIn)
	assert.Equal(t, "Dewi Lestari", dewi.UserName)
	assert.Equal(t, attendance.StatusSick, dewi.Status)
	assert.Empty(t, dewi.TimeIn)
	for _, r := range recs {
		assert.Equal(t, "XII-IPA-1", r.Class)
		assert.Equal(t, "2024-07-15", r.Date)
		assert.Equal(t, roster.RoleStudent, r.UserRole)
	}

	all := c.Journal().All()
	assert.Equal(t, recs[0].ID, all[0].ID)
	assert.Equal(t, recs[1].ID, all[1].ID)
}

func TestSubmitRollCall_UnknownStudentAndNoDedup(t *testing.T) {
	c := newTestController(t)
	budi, _ := c.Users().Find("2")

	entries := []RollCallEntry{
		{StudentID: "404", Status: attendance.StatusAlpha},
		{StudentID: "4", Status: attendance.StatusPermitted},
		{StudentID: "4", Status: attendance.StatusLate},
	}
	recs, err := c.SubmitRollCall(budi, entries)
	require.NoError(t, err)
	require.Len(t, recs, len(entries))
	assert.Equal(t, UnknownStudentName, recs[0].UserName)
	for _, r := range recs {
		assert.Empty(t, r.TimeIn)
	}
}

func TestSubmitRollCall_Rejections(t *testing.T) {
	c := newTestController(t)
	siti, _ := c.Users().Find("3")
	budi, _ := c.Users().Find("2")
	before := c.Journal().Len()

	_, err := c.SubmitRollCall(siti, []RollCallEntry{{StudentID: "4", Status: attendance.StatusPresent}})
	assert.ErrorIs(t, err, ErrNotHomeroom)

	_, err = c.SubmitRollCall(budi, []RollCallEntry{
		{StudentID: "4", Status: attendance.StatusPresent},
		{StudentID: "5", Status: attendance.Status("Libur")},
	})
	assert.True(t, errors.Is(err, attendance.ErrUnknownStatus))
	assert.Equal(t, before, c.Journal().Len())
}

func TestSummary_AppliedOnlyToRequestingVisit(t *testing.T) {
	c := newTestController(t)
	login(t, c, "admin@abdig.com")

	_, err := c.RequestSummary(roster.RoleStudent)
	assert.ErrorIs(t, err, ErrNotOnReports)

	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, SummaryPending, c.Snapshot().Summary.State)
	assert.Len(t, job.Records, 3)

	assert.True(t, c.ApplySummary(job.Ticket, "All good."))
	assert.Equal(t, Summary{State: SummaryReady, Text: "All good."}, c.Snapshot().Summary)

	stale, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, c.Navigate(ViewDashboard))
	require.NoError(t, c.Navigate(ViewReports))

	assert.False(t, c.ApplySummary(stale.Ticket, "late"))
	assert.Equal(t, Summary{State: SummaryIdle}, c.Snapshot().Summary)
}

func TestSummary_DiscardedAfterLogout(t *testing.T) {
	c := newTestController(t)
	login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)

	c.Logout()
	assert.False(t, c.ApplySummary(job.Ticket, "late"))
	_, err = c.RequestSummary(roster.RoleStudent)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestNavigate_SameViewKeepsVisit(t *testing.T) {
	c := newTestController(t)
	login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)

	require.NoError(t, c.Navigate(ViewReports))
	assert.True(t, c.ApplySummary(job.Ticket, "still here"))
}

func TestSummary_FallsBackAfterDeadline(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 0, 0, 0, wib)
	c := NewController(roster.NewDirectory(roster.SeedUsers()), attendance.NewJournal(nil), roster.DefaultSchool, wib,
		WithClock(func() time.Time { return now }),
		WithSummaryDeadline(10*time.Second),
	)
	login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)

	now = now.Add(9 * time.Second)
	assert.Equal(t, SummaryPending, c.Snapshot().Summary.State)

	now = now.Add(time.Second)
	assert.Equal(t, Summary{State: SummaryReady, Text: report.FallbackText}, c.Snapshot().Summary)

	assert.False(t, c.ApplySummary(job.Ticket, "too late"))
	assert.Equal(t, report.FallbackText, c.Snapshot().Summary.Text)
}

func TestSummary_ExpiresWithoutSnapshot(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 0, 0, 0, wib)
	c := NewController(roster.NewDirectory(roster.SeedUsers()), attendance.NewJournal(nil), roster.DefaultSchool, wib,
		WithClock(func() time.Time { return now }),
	)
	login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)

	now = now.Add(DefaultSummaryDeadline)
	assert.False(t, c.ApplySummary(job.Ticket, "too late"))
	assert.Equal(t, Summary{State: SummaryReady, Text: report.FallbackText}, c.Snapshot().Summary)
}

func TestSummary_AppliedOnce(t *testing.T) {
	c := newTestController(t)
	login(t, c, "admin@abdig.com")
	require.NoError(t, c.Navigate(ViewReports))
	job, err := c.RequestSummary(roster.RoleStudent)
	require.NoError(t, err)

	assert.True(t, c.ApplySummary(job.Ticket, "first"))
	assert.False(t, c.ApplySummary(job.Ticket, "second"))
	assert.Equal(t, "first", c.Snapshot().Summary.Text)
}

func TestSessionIntents_RejectReplacedSession(t *testing.T) {
	c := newTestController(t)
	budi := login(t, c, "budi@guru.com")
	admin := login(t, c, "admin@abdig.com")
	before := c.Journal().Len()

	_, err := c.ClockInSession(budi.ID)
	assert.ErrorIs(t, err, ErrSessionEnded)
	_, err = c.SubmitRollCallSession(budi.ID, []RollCallEntry{{StudentID: "4", Status: attendance.StatusPresent}})
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, c.NavigateSession(budi.ID, ViewClassAttendance), ErrSessionEnded)
	_, err = c.RequestSummarySession(budi.ID, roster.RoleStudent)
	assert.ErrorIs(t, err, ErrSessionEnded)
	assert.ErrorIs(t, c.LogoutSession(budi.ID), ErrSessionEnded)

	assert.Equal(t, before, c.Journal().Len())
	st := c.Snapshot()
	require.NotNil(t, st.Session)
	assert.Equal(t, admin.ID, st.Session.ID)
	assert.Equal(t, ViewDashboard, st.View)

	require.NoError(t, c.LogoutSession(admin.ID))
	assert.Nil(t, c.Snapshot().Session)
	_, err = c.ClockInSession(admin.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionIntents_ActAsSessionUser(t *testing.T) {
	c := newTestController(t)
	budi := login(t, c, "budi@guru.com")

	rec, err := c.ClockInSession(budi.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", rec.UserID)

	recs, err := c.SubmitRollCallSession(budi.ID, []RollCallEntry{{StudentID: "5", Status: attendance.StatusAlpha}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "XII-IPA-1", recs[0].Class)

	admin := login(t, c, "admin@abdig.com")
	_, err = c.ClockInSession(admin.ID)
	assert.ErrorIs(t, err, ErrViewNotPermitted)
	_, err = c.SubmitRollCallSession(admin.ID, nil)
	assert.ErrorIs(t, err, ErrNotHomeroom)
}

func TestSubmitRollCall_TimeInIndependentOfEntryTime(t *testing.T) {
	school := roster.DefaultSchool
	school.EntryTime = "07:30"
	c := NewController(roster.NewDirectory(roster.SeedUsers()), attendance.NewJournal(nil), school, wib)
	budi, _ := c.Users().Find("2")

	recs, err := c.SubmitRollCall(budi, []RollCallEntry{{StudentID: "4", Status: attendance.StatusPresent}})
	require.NoError(t, err)
	assert.Equal(t, RollCallTimeIn, recs[0].TimeIn)
	assert.Equal(t, "07:00", recs[0].TimeIn)
}

func TestLogin_RoleWithoutMenuRefused(t *testing.T) {
	users := append(roster.SeedUsers(), roster.User{
		ID: "9", Name: "Tata Usaha", Email: "tu@abdig.com", Role: roster.Role("TU"), Password: "password",
	})
	c := NewController(roster.NewDirectory(users), attendance.NewJournal(nil), roster.DefaultSchool, wib)

	_, err := c.Login("tu@abdig.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	st := c.Snapshot()
	assert.Nil(t, st.Session)
	assert.Equal(t, ViewLogin, st.View)
}
