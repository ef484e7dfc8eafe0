package app

import (
	"context"

	"unsend_service/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultBroadcastLimit = 8

// SendOutcome 單一目標的結果
type SendOutcome struct {
	Target string
	Err    error
}

// BroadcastResult outcome of every target, in the order they were given
type BroadcastResult []SendOutcome

// Succeeded number of targets that went through
func (r BroadcastResult) Succeeded() int {
	n := 0
	for _, o := range r {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failed targets that returned an error
func (r BroadcastResult) Failed() []SendOutcome {
	var out []SendOutcome
	for _, o := range r {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// BestEffortBroadcast start every send, wait for all of them to settle and
// report each outcome. A failing send never stops the others.
func BestEffortBroadcast(ctx context.Context, label string, targets []string, limit int, send func(ctx context.Context, i int, target string) error) BroadcastResult {
	result := make(BroadcastResult, len(targets))
	if len(targets) == 0 {
		return result
	}
	if limit <= 0 {
		limit = defaultBroadcastLimit
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, target := range targets {
		g.Go(func() error {
			result[i] = SendOutcome{Target: target, Err: send(ctx, i, target)}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range result.Failed() {
		logger.Log.Error("best effort send failed",
			zap.String("broadcast", label),
			zap.String("target", f.Target),
			zap.Error(f.Err),
		)
	}
	logger.Log.Debug("best effort broadcast settled",
		zap.String("broadcast", label),
		zap.Int("targets", len(targets)),
		zap.Int("succeeded", result.Succeeded()),
	)
	return result
}
