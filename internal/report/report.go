package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"abdig/internal/attendance"
	"abdig/internal/roster"
)

const (
	// FallbackText replaces the summary whenever the generator fails.
	FallbackText = "AI insight unavailable"
	// NotConfiguredText is returned when no API key is configured.
	NotConfiguredText = "AI insight unavailable: configure GEMINI_API_KEY to use Gemini insights."
)

// Queue message types.
const (
	MsgRequest = "summary.request"
	MsgResult  = "summary.result"
)

// Summarizer turns attendance records into prose. Implementations never fail;
// problems surface as fallback text.
type Summarizer interface {
	Summarize(ctx context.Context, records []attendance.Record, role roster.Role) string
}

// Job asks for a summary on behalf of one reports-screen visit.
type Job struct {
	Ticket      string              `json:"ticket"`
	Role        roster.Role         `json:"role"`
	Records     []attendance.Record `json:"records"`
	RequestedAt time.Time           `json:"requested_at"`
}

// Result carries the summary text back to the visit identified by Ticket.
type Result struct {
	Ticket string `json:"ticket"`
	Text   string `json:"text"`
}

// Prompt builds the executive-summary prompt for a tally.
func Prompt(t attendance.Tally, role roster.Role, date string) string {
	group := "Students"
	if role == roster.RoleTeacher {
		group = "Teachers"
	}
	return fmt.Sprintf(`Analyze the following attendance data for %s on %s.

Summary:
- Present: %d
- Late: %d
- Sick: %d
- Alpha (Absent without notice): %d
- Total Records: %d

Please provide a professional, concise executive summary (max 100 words) of the attendance situation today.
Highlight any alarming trends (like high absence or lateness) and provide a quick recommendation for the school admin.
Tone: Formal, Insightful.`, group, date, t.Present, t.Late, t.Sick, t.Alpha, t.Total)
}

func encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func decodeJob(body []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(body, &j); err != nil {
		return Job{}, fmt.Errorf("decode summary job: %w", err)
	}
	return j, nil
}

func decodeResult(body []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(body, &r); err != nil {
		return Result{}, fmt.Errorf("decode summary result: %w", err)
	}
	return r, nil
}
