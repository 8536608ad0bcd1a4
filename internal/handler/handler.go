package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"abdig/internal/attendance"
	"abdig/internal/auth"
	"abdig/internal/httpmiddleware"
	"abdig/internal/queue"
	"abdig/internal/report"
	"abdig/internal/roster"
	"abdig/internal/screen"
	"abdig/internal/session"
	"abdig/internal/store"
)

// LoginHint is shown when a login attempt fails.
const LoginHint = "Invalid credentials. Try admin@abdig.com / password"

// Options carries the token and rate limit settings.
type Options struct {
	JWTIssuer       string
	JWTSigningKey   string
	SessionTTL      time.Duration
	RateLimitPerMin int
	Log             *zap.Logger
}

type Handler struct {
	ctl     *session.Controller
	screens screen.Builder
	jobs    queue.Queue
	redis   *store.Redis // nil with the in-memory queue
	opts    Options
	log     *zap.Logger
}

// New wires the controller to the summary job queue. redis may be nil.
func New(ctl *session.Controller, jobs queue.Queue, redis *store.Redis, opts Options) *Handler {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		ctl: ctl,
		screens: screen.Builder{
			Users:   ctl.Users(),
			Journal: ctl.Journal(),
			School:  ctl.School(),
		},
		jobs:  jobs,
		redis: redis,
		opts:  opts,
		log:   log,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/healthz", h.Healthz)

	v1 := r.Group("/v1")
	v1.GET("/config", h.School)
	v1.POST("/session/login", h.Login)
	v1.GET("/screen", auth.OptionalSession(h.opts.JWTSigningKey, h.opts.JWTIssuer, h.ctl), h.Screen)

	authed := v1.Group("", auth.SessionAuth(h.opts.JWTSigningKey, h.opts.JWTIssuer, h.ctl))
	{
		authed.GET("/session", h.Session)
		authed.POST("/session/logout", h.Logout)
		authed.PUT("/session/view", h.Navigate)

		authed.POST("/attendance/clock-in", h.ClockIn)
		authed.POST("/attendance/roll-call", h.RollCall)
		authed.GET("/attendance", h.ListAttendance)

		summary := []gin.HandlerFunc{h.RequestSummary}
		if n := h.opts.RateLimitPerMin; n > 0 {
			limiter := httpmiddleware.NewTokenBucket(n, n)
			summary = append([]gin.HandlerFunc{limiter.GinMiddleware(subject)}, summary...)
		}
		authed.POST("/reports/summary", summary...)
		authed.GET("/reports/summary", h.Summary)
	}
}

// ---------- Health ----------

func (h *Handler) Healthz(c *gin.Context) {
	if h.redis == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	if !h.redis.Healthy(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "redis": true})
}

func (h *Handler) School(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctl.School())
}

// ---------- Session ----------

type loginRequest struct {
	Identifier string `json:"identifier"`
	Credential string `json:"credential"`
}

// Login authenticates by email or NIP/NISN and returns a token bound to the new session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.ctl.Login(req.Identifier, req.Credential)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": LoginHint})
		return
	}
	tok, err := auth.Issue(s.User.ID, string(s.User.Role), s.ID, h.opts.JWTIssuer, h.opts.JWTSigningKey, h.opts.SessionTTL)
	if err != nil {
		h.log.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": tok.AccessToken,
		"expires_at":   tok.ExpiresAt.Unix(),
		"session":      s,
		"menu":         session.Menu(s.User),
	})
}

func (h *Handler) Session(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.ctl.LogoutSession(sessionID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session.State{View: session.ViewLogin, Summary: session.Summary{State: session.SummaryIdle}})
}

type navigateRequest struct {
	View session.View `json:"view" binding:"required"`
}

func (h *Handler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.ctl.NavigateSession(sessionID(c), req.View); err != nil {
		h.fail(c, err)
		return
	}
	h.Session(c)
}

// Screen renders the current view; callers without a live token get the login screen.
func (h *Handler) Screen(c *gin.Context) {
	st := session.State{View: session.ViewLogin}
	if claims, ok := auth.ClaimsFrom(c); ok {
		if live := h.ctl.Snapshot(); live.Session != nil && live.Session.ID == claims.SessionID {
			st = live
		}
	}
	c.JSON(http.StatusOK, h.screens.Render(st, h.ctl.Now()))
}

// ---------- Attendance ----------

// ClockIn records the session teacher as present now.
func (h *Handler) ClockIn(c *gin.Context) {
	rec, err := h.ctl.ClockInSession(sessionID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type rollCallRequest struct {
	Entries []struct {
		StudentID string `json:"student_id" binding:"required"`
		Status    string `json:"status" binding:"required"`
	} `json:"entries" binding:"required,dive"`
}

// RollCall saves one status per student of the teacher's class.
func (h *Handler) RollCall(c *gin.Context) {
	var req rollCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entries := make([]session.RollCallEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		st, err := attendance.ParseStatus(e.Status)
		if err != nil {
			h.fail(c, err)
			return
		}
		entries = append(entries, session.RollCallEntry{StudentID: e.StudentID, Status: st})
	}
	recs, err := h.ctl.SubmitRollCallSession(sessionID(c), entries)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"records": recs, "message": "Absensi berhasil disimpan"})
}

// ListAttendance returns journal records newest first, filtered by query.
func (h *Handler) ListAttendance(c *gin.Context) {
	q := attendance.Query{
		UserID: c.Query("user_id"),
		Date:   c.Query("date"),
		Class:  c.Query("class"),
		Role:   roster.Role(c.Query("role")),
	}
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			q.Limit = parsed
		}
	}
	recs := h.ctl.Journal().Find(q)
	if recs == nil {
		recs = []attendance.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// ---------- Reports ----------

type summaryRequest struct {
	Role roster.Role `json:"role"`
}

// RequestSummary queues an AI summary for the current reports visit.
func (h *Handler) RequestSummary(c *gin.Context) {
	var req summaryRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	switch req.Role {
	case "":
		req.Role = roster.RoleStudent
	case roster.RoleStudent, roster.RoleTeacher:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be GURU or SISWA"})
		return
	}
	job, err := h.ctl.RequestSummarySession(sessionID(c), req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := report.Publish(c.Request.Context(), h.jobs, job); err != nil {
		h.log.Error("summary publish failed", zap.String("ticket", job.Ticket), zap.Error(err))
		h.ctl.ApplySummary(job.Ticket, report.FallbackText)
	}
	c.JSON(http.StatusAccepted, gin.H{"ticket": job.Ticket, "state": session.SummaryPending})
}

func (h *Handler) Summary(c *gin.Context) {
	st, ok := h.state(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Summary)
}

// ---------- helpers ----------

// state snapshots the controller for the token's session; a replaced session gets 401.
func (h *Handler) state(c *gin.Context) (session.State, bool) {
	st := h.ctl.Snapshot()
	switch {
	case st.Session == nil:
		h.fail(c, session.ErrNoSession)
		return session.State{}, false
	case st.Session.ID != sessionID(c):
		h.fail(c, session.ErrSessionEnded)
		return session.State{}, false
	}
	return st, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrSessionEnded):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrViewNotPermitted), errors.Is(err, session.ErrNotHomeroom):
		status = http.StatusForbidden
	case errors.Is(err, session.ErrNotOnReports):
		status = http.StatusConflict
	case errors.Is(err, attendance.ErrUnknownStatus):
		status = http.StatusBadRequest
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func sessionID(c *gin.Context) string {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return ""
	}
	return claims.SessionID
}

func subject(c *gin.Context) string {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		return ""
	}
	return claims.Subject
}
