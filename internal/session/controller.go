package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"abdig/internal/attendance"
	"abdig/internal/metrics"
	"abdig/internal/report"
	"abdig/internal/roster"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
	ErrViewNotPermitted   = errors.New("view not permitted for role")
	ErrNotHomeroom        = errors.New("user is not a homeroom teacher")
	ErrNotOnReports       = errors.New("summary can only be requested from the reports view")
	ErrSessionEnded       = errors.New("session ended")
)

const (
	// UnknownStudentName is used for roll-call entries whose student id is not in the directory.
	UnknownStudentName = "Unknown"
	// RollCallTimeIn is the time-in stamped on Hadir roll-call records.
	RollCallTimeIn = "07:00"
	// DefaultSummaryDeadline bounds how long the reports slot stays pending.
	DefaultSummaryDeadline = 30 * time.Second
)

// Session is the single authenticated session.
type Session struct {
	ID        string      `json:"-"`
	User      roster.User `json:"user"`
	View      View        `json:"view"`
	VisitID   string      `json:"visit_id"`
	StartedAt time.Time   `json:"started_at"`
}

// SummaryState tracks the AI slot of the reports screen.
type SummaryState string

const (
	SummaryIdle    SummaryState = "idle"
	SummaryPending SummaryState = "pending"
	SummaryReady   SummaryState = "ready"
)

// Summary is the AI slot read by the reports screen.
type Summary struct {
	State SummaryState `json:"state"`
	Text  string       `json:"text,omitempty"`
}

// State is a point-in-time copy of the controller.
type State struct {
	Session *Session   `json:"session,omitempty"`
	View    View       `json:"view"`
	Menu    []MenuItem `json:"menu"`
	Summary Summary    `json:"summary"`
}

// RollCallEntry is one student's status in a class roll-call.
type RollCallEntry struct {
	StudentID string
	Status    attendance.Status
}

// Controller owns the session and the attendance journal. Every intent runs
// under one lock so intents never interleave.
type Controller struct {
	mu      sync.Mutex
	users   *roster.Directory
	journal *attendance.Journal
	school  roster.SchoolConfig
	loc     *time.Location
	now     func() time.Time
	newID   func() string
	log     *zap.Logger
	wait    time.Duration

	session  *Session
	summary  Summary
	deadline time.Time
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(c *Controller) { c.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithSummaryDeadline sets how long a requested summary may stay pending
// before the slot falls back to report.FallbackText.
func WithSummaryDeadline(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.wait = d
		}
	}
}

// NewController creates a controller with no session.
func NewController(users *roster.Directory, journal *attendance.Journal, school roster.SchoolConfig, loc *time.Location, opts ...Option) *Controller {
	if loc == nil {
		loc = time.UTC
	}
	c := &Controller{
		users:   users,
		journal: journal,
		school:  school,
		loc:     loc,
		now:     time.Now,
		newID:   uuid.NewString,
		log:     zap.NewNop(),
		wait:    DefaultSummaryDeadline,
		summary: Summary{State: SummaryIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the current time in the school time zone.
func (c *Controller) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current school date as YYYY-MM-DD.
func (c *Controller) Today() string {
	return c.Now().Format(attendance.DateLayout)
}

// Login authenticates by email or NIP/NISN and replaces any existing session.
// Accounts whose role has no menu cannot log in.
func (c *Controller) Login(identifier, credential string) (Session, error) {
	u, ok := c.users.Authenticate(identifier, credential)
	if !ok {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return Session{}, ErrInvalidCredentials
	}
	if len(Menu(u)) == 0 {
		metrics.Logins.WithLabelValues("no_menu").Inc()
		c.log.Warn("login refused, role has no menu", zap.String("user", u.ID), zap.String("role", string(u.Role)))
		return Session{}, ErrInvalidCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &Session{ID: c.newID(), User: u, StartedAt: c.now()}
	c.show(DefaultView(u.Role))
	metrics.Logins.WithLabelValues("ok").Inc()
	c.log.Info("login", zap.String("user", u.ID), zap.String("role", string(u.Role)), zap.String("view", string(c.session.View)))
	return *c.session, nil
}

// Logout clears the session; the view returns to LOGIN.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logout()
}

// LogoutSession ends the session sid. A session that was already replaced is left alone.
func (c *Controller) LogoutSession(sid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.sessionFor(sid); err != nil {
		return err
	}
	c.logout()
	return nil
}

func (c *Controller) logout() {
	if c.session != nil {
		c.log.Info("logout", zap.String("user", c.session.User.ID))
	}
	c.session = nil
	c.summary = Summary{State: SummaryIdle}
	c.deadline = time.Time{}
}

// Navigate opens v when it is in the session's menu.
func (c *Controller) Navigate(v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ErrNoSession
	}
	return c.navigate(v)
}

// NavigateSession is Navigate for the session sid only.
func (c *Controller) NavigateSession(sid string, v View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.sessionFor(sid); err != nil {
		return err
	}
	return c.navigate(v)
}

// navigate requires a session. Caller holds mu.
func (c *Controller) navigate(v View) error {
	if !Permitted(c.session.User, v) {
		metrics.NavigationRejected.Inc()
		return fmt.Errorf("%w: %s", ErrViewNotPermitted, v)
	}
	if c.session.View != v {
		c.show(v)
	}
	return nil
}

// show switches view and starts a new visit. Caller holds mu.
func (c *Controller) show(v View) {
	c.session.View = v
	c.session.VisitID = c.newID()
	c.summary = Summary{State: SummaryIdle}
	c.deadline = time.Time{}
}

// sessionFor returns the live session if its id is sid. Caller holds mu.
func (c *Controller) sessionFor(sid string) (*Session, error) {
	if c.session == nil {
		return nil, ErrNoSession
	}
	if c.session.ID != sid {
		return nil, ErrSessionEnded
	}
	return c.session, nil
}

// ClockIn appends a Hadir record for u stamped with the current time.
// Repeated calls append repeated records.
func (c *Controller) ClockIn(u roster.User) attendance.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clockIn(u)
}

// ClockInSession clocks in the user of session sid, who must be a teacher.
func (c *Controller) ClockInSession(sid string) (attendance.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionFor(sid)
	if err != nil {
		return attendance.Record{}, err
	}
	if !Permitted(s.User, ViewTeacherAttendance) {
		return attendance.Record{}, fmt.Errorf("%w: clock-in needs %s", ErrViewNotPermitted, ViewTeacherAttendance)
	}
	return c.clockIn(s.User), nil
}

// clockIn appends the record. Caller holds mu.
func (c *Controller) clockIn(u roster.User) attendance.Record {
	now := c.Now()
	rec := attendance.Record{
		ID:       c.newID(),
		UserID:   u.ID,
		UserName: u.Name,
		UserRole: u.Role,
		Date:     now.Format(attendance.DateLayout),
		TimeIn:   now.Format(attendance.ClockLayout),
		Status:   attendance.StatusPresent,
	}
	c.journal.Prepend(rec)
	metrics.RecordsAppended.WithLabelValues("clock_in").Inc()
	c.log.Info("clock in", zap.String("user", u.ID), zap.String("time", rec.TimeIn))
	return rec
}

// SubmitRollCall appends one record per entry, in entry order, for the
// teacher's class. Unknown student ids are recorded under UnknownStudentName.
// Hadir records get RollCallTimeIn regardless of the school entry time.
func (c *Controller) SubmitRollCall(teacher roster.User, entries []RollCallEntry) ([]attendance.Record, error) {
	if err := checkRollCall(teacher, entries); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitRollCall(teacher, entries), nil
}

// SubmitRollCallSession is SubmitRollCall on behalf of the user of session sid.
func (c *Controller) SubmitRollCallSession(sid string, entries []RollCallEntry) ([]attendance.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionFor(sid)
	if err != nil {
		return nil, err
	}
	if err := checkRollCall(s.User, entries); err != nil {
		return nil, err
	}
	return c.submitRollCall(s.User, entries), nil
}

func checkRollCall(teacher roster.User, entries []RollCallEntry) error {
	if !teacher.IsHomeroomTeacher() {
		return ErrNotHomeroom
	}
	for _, e := range entries {
		if !e.Status.Valid() {
			return fmt.Errorf("student %s: %w: %q", e.StudentID, attendance.ErrUnknownStatus, e.Status)
		}
	}
	return nil
}

// submitRollCall appends validated entries. Caller holds mu.
func (c *Controller) submitRollCall(teacher roster.User, entries []RollCallEntry) []attendance.Record {
	today := c.Today()
	recs := make([]attendance.Record, 0, len(entries))
	for _, e := range entries {
		name := UnknownStudentName
		if s, ok := c.users.Find(e.StudentID); ok {
			name = s.Name
		} else {
			c.log.Warn("roll call references unknown student", zap.String("student", e.StudentID))
		}
		rec := attendance.Record{
			ID:       c.newID(),
			UserID:   e.StudentID,
			UserName: name,
			UserRole: roster.RoleStudent,
			Date:     today,
			Status:   e.Status,
			Class:    teacher.AssignedClass,
		}
		if e.Status == attendance.StatusPresent {
			rec.TimeIn = RollCallTimeIn
		}
		recs = append(recs, rec)
	}
	c.journal.Prepend(recs...)
	metrics.RecordsAppended.WithLabelValues("roll_call").Add(float64(len(recs)))
	c.log.Info("roll call saved", zap.String("teacher", teacher.ID), zap.String("class", teacher.AssignedClass), zap.Int("records", len(recs)))
	return recs
}

// RequestSummary marks the reports slot pending and returns a job for the
// current visit. The result must come back through ApplySummary before the
// summary deadline, after which the slot shows report.FallbackText.
func (c *Controller) RequestSummary(role roster.Role) (report.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return report.Job{}, ErrNoSession
	}
	return c.requestSummary(role)
}

// RequestSummarySession is RequestSummary for the session sid only.
func (c *Controller) RequestSummarySession(sid string, role roster.Role) (report.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.sessionFor(sid); err != nil {
		return report.Job{}, err
	}
	return c.requestSummary(role)
}

// requestSummary requires a session. Caller holds mu.
func (c *Controller) requestSummary(role roster.Role) (report.Job, error) {
	if c.session.View != ViewReports {
		return report.Job{}, ErrNotOnReports
	}
	c.summary = Summary{State: SummaryPending}
	c.deadline = c.now().Add(c.wait)
	metrics.Summaries.WithLabelValues("requested").Inc()
	return report.Job{
		Ticket:      c.session.VisitID,
		Role:        role,
		Records:     c.journal.All(),
		RequestedAt: c.now(),
	}, nil
}

// ApplySummary stores text in the reports slot if ticket is still the current
// visit and the slot is still pending. Results for visits that have ended, or
// that arrive after the deadline, are discarded.
func (c *Controller) ApplySummary(ticket, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireSummary()
	if c.session == nil || c.session.VisitID != ticket || c.summary.State != SummaryPending {
		metrics.Summaries.WithLabelValues("discarded").Inc()
		return false
	}
	c.summary = Summary{State: SummaryReady, Text: text}
	c.deadline = time.Time{}
	metrics.Summaries.WithLabelValues("applied").Inc()
	return true
}

// expireSummary resolves a pending slot whose deadline has passed. Caller holds mu.
func (c *Controller) expireSummary() {
	if c.summary.State != SummaryPending || c.deadline.IsZero() || c.now().Before(c.deadline) {
		return
	}
	c.summary = Summary{State: SummaryReady, Text: report.FallbackText}
	c.deadline = time.Time{}
	metrics.Summaries.WithLabelValues("expired").Inc()
	if c.session != nil {
		c.log.Warn("summary deadline passed", zap.String("ticket", c.session.VisitID))
	}
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expireSummary()
	if c.session == nil {
		return State{View: ViewLogin, Summary: Summary{State: SummaryIdle}}
	}
	s := *c.session
	return State{
		Session: &s,
		View:    s.View,
		Menu:    Menu(s.User),
		Summary: c.summary,
	}
}

// ActiveSession reports whether id belongs to the live session.
func (c *Controller) ActiveSession(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.ID == id
}

// Users returns the directory the controller authenticates against.
func (c *Controller) Users() *roster.Directory { return c.users }

// Journal returns the attendance journal.
func (c *Controller) Journal() *attendance.Journal { return c.journal }

// School returns the display configuration.
func (c *Controller) School() roster.SchoolConfig { return c.school }
