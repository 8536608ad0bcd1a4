package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"abdig/internal/queue"
)

// Worker consumes summary jobs and publishes their results.
type Worker struct {
	Requests   queue.Queue
	Results    queue.Queue
	Summarizer Summarizer
	Timeout    time.Duration
	Log        *zap.Logger
}

// Run processes jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.Requests.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		if msg.Type != MsgRequest {
			continue
		}
		job, err := decodeJob(msg.Body)
		if err != nil {
			w.Log.Error("dropping summary job", zap.Error(err))
			continue
		}
		res := w.Process(ctx, job)
		body, err := encode(res)
		if err != nil {
			w.Log.Error("encode summary result", zap.Error(err))
			continue
		}
		if err := w.Results.Publish(ctx, queue.Message{Type: MsgResult, Body: body}); err != nil {
			w.Log.Error("publish summary result", zap.String("ticket", job.Ticket), zap.Error(err))
		}
	}
	return nil
}

// Process summarizes a single job within the worker timeout.
func (w *Worker) Process(ctx context.Context, job Job) Result {
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	start := time.Now()
	text := w.Summarizer.Summarize(ctx, job.Records, job.Role)
	w.Log.Info("summary generated",
		zap.String("ticket", job.Ticket),
		zap.Int("records", len(job.Records)),
		zap.Duration("took", time.Since(start)))
	return Result{Ticket: job.Ticket, Text: text}
}

// Publish enqueues job on q.
func Publish(ctx context.Context, q queue.Queue, job Job) error {
	body, err := encode(job)
	if err != nil {
		return err
	}
	return q.Publish(ctx, queue.Message{Type: MsgRequest, Body: body})
}

// Deliver consumes results from q and hands each to apply until ctx is done.
// apply reports whether the result reached its screen.
func Deliver(ctx context.Context, q queue.Queue, apply func(Result) bool, log *zap.Logger) error {
	msgs, err := q.Consume(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		if msg.Type != MsgResult {
			continue
		}
		res, err := decodeResult(msg.Body)
		if err != nil {
			log.Error("dropping summary result", zap.Error(err))
			continue
		}
		if !apply(res) {
			log.Debug("stale summary discarded", zap.String("ticket", res.Ticket))
		}
	}
	return nil
}
