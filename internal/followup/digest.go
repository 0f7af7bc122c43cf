package followup

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/prospect-pipeline/internal/notify"
	"github.com/wolfman30/prospect-pipeline/internal/observability/metrics"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// DigestCategory tags digest emails at the provider.
const DigestCategory = "followup-digest"

// Summary is the content of one follow-up digest.
type Summary struct {
	Date     prospects.Date  `json:"date"`
	Overdue  []prospects.Row `json:"overdue"`
	DueToday []prospects.Row `json:"dueToday"`
	Touches  int             `json:"touches"`
	Goal     int             `json:"goal"`
}

// Empty reports whether nothing is overdue or due today.
func (s Summary) Empty() bool {
	return len(s.Overdue) == 0 && len(s.DueToday) == 0
}

// Digest emails the coach the prospects that need a touch today.
type Digest struct {
	store     *prospects.Store
	sender    notify.EmailSender
	recipient string
	goal      int
	metrics   *metrics.PipelineMetrics
	logger    *logging.Logger
}

// NewDigest creates a digest that sends to recipient through sender.
func NewDigest(store *prospects.Store, sender notify.EmailSender, recipient string, logger *logging.Logger) *Digest {
	if logger == nil {
		logger = logging.Default()
	}
	return &Digest{
		store:     store,
		sender:    sender,
		recipient: recipient,
		goal:      prospects.DefaultTouchGoal,
		logger:    logger,
	}
}

func (d *Digest) WithTouchGoal(goal int) *Digest {
	if goal > 0 {
		d.goal = goal
	}
	return d
}

func (d *Digest) WithMetrics(m *metrics.PipelineMetrics) *Digest {
	d.metrics = m
	return d
}

// Build collects overdue and due-today prospects, most overdue first, plus today's touch count.
func (d *Digest) Build(ctx context.Context) (Summary, error) {
	view, err := d.store.View(ctx, prospects.Query{Sort: prospects.SortNextAction, Dir: prospects.SortAsc})
	if err != nil {
		return Summary{}, fmt.Errorf("followup: build view: %w", err)
	}
	summary := Summary{Date: d.store.Today(), Goal: d.goal}
	for _, row := range view.Rows {
		switch {
		case row.IsOverdue:
			summary.Overdue = append(summary.Overdue, row)
		case row.IsToday:
			summary.DueToday = append(summary.DueToday, row)
		}
	}

	report, err := d.store.Touches(ctx, summary.Date, d.goal, 1)
	if err != nil {
		d.logger.Warn("digest touch count unavailable", "error", err)
	} else {
		summary.Touches = report.Touches
	}
	return summary, nil
}

// Run builds the digest and emails it. Nothing is sent when the summary is empty.
func (d *Digest) Run(ctx context.Context) (summary Summary, sent bool, err error) {
	summary, err = d.Build(ctx)
	if err != nil {
		d.metrics.ObserveDigest("failed")
		return Summary{}, false, err
	}
	if summary.Empty() {
		d.metrics.ObserveDigest("empty")
		d.logger.Info("follow-up digest skipped, nothing due", "date", summary.Date)
		return summary, false, nil
	}
	if d.sender == nil || d.recipient == "" {
		d.metrics.ObserveDigest("failed")
		return summary, false, fmt.Errorf("followup: email sender or recipient not configured")
	}

	subject, text, htmlBody := Render(summary)
	if err := d.sender.Send(ctx, notify.EmailMessage{
		To:       d.recipient,
		Subject:  subject,
		Body:     text,
		HTML:     htmlBody,
		Category: DigestCategory,
	}); err != nil {
		d.metrics.ObserveDigest("failed")
		return summary, false, fmt.Errorf("followup: send digest: %w", err)
	}

	d.metrics.ObserveDigest("sent")
	d.logger.Info("follow-up digest sent", "date", summary.Date, "overdue", len(summary.Overdue), "due_today", len(summary.DueToday))
	return summary, true, nil
}

// Render returns the subject, plain text and HTML bodies of the digest email.
func Render(s Summary) (subject, text, htmlBody string) {
	subject = fmt.Sprintf("Follow-ups for %s: %d overdue, %d due today", s.Date, len(s.Overdue), len(s.DueToday))

	var tb, hb strings.Builder
	fmt.Fprintf(&tb, "Touches today: %d / %d\n", s.Touches, s.Goal)
	fmt.Fprintf(&hb, "<p>Touches today: <strong>%d / %d</strong></p>\n", s.Touches, s.Goal)

	section := func(title string, rows []prospects.Row) {
		if len(rows) == 0 {
			return
		}
		fmt.Fprintf(&tb, "\n%s (%d)\n", title, len(rows))
		fmt.Fprintf(&hb, "<h3>%s (%d)</h3>\n<ul>\n", html.EscapeString(title), len(rows))
		for _, r := range rows {
			line := describe(r)
			fmt.Fprintf(&tb, "- %s\n", line)
			fmt.Fprintf(&hb, "<li>%s</li>\n", html.EscapeString(line))
		}
		hb.WriteString("</ul>\n")
	}
	section("Overdue", s.Overdue)
	section("Due today", s.DueToday)
	return subject, tb.String(), hb.String()
}

func describe(r prospects.Row) string {
	parts := []string{r.Name, string(r.Status)}
	if r.NextActionType != prospects.ActionNone {
		parts = append(parts, string(r.NextActionType))
	}
	if r.IsOverdue {
		parts = append(parts, "due "+r.NextAction.String())
	}
	if r.Phone != "" {
		parts = append(parts, r.Phone)
	} else if r.Email != "" {
		parts = append(parts, r.Email)
	}
	return strings.Join(parts, " · ")
}
