package app

import (
	"sync"
	"time"

	"unsend_service/pkg/logger"

	"go.uber.org/zap"
)

const rollingAverageWindowSize = 10

// Clock 網路校正後的毫秒時間
type Clock interface {
	Now() int64
}

// NetworkTime keeps a rolling average of the offset between our clock and the swarm's
type NetworkTime struct {
	mu      sync.Mutex
	offsets []int64
	set     []bool
	index   int
	local   func() int64
}

// NewNetworkTime create NetworkTime with no offset recorded yet
func NewNetworkTime() *NetworkTime {
	return &NetworkTime{
		offsets: make([]int64, rollingAverageWindowSize),
		set:     make([]bool, rollingAverageWindowSize),
		local:   func() int64 { return time.Now().UnixMilli() },
	}
}

// SetLatestTimestampOffset record the offset (local - server, ms) seen on a request
func (n *NetworkTime) SetLatestTimestampOffset(offset int64, request string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	first := true
	for _, s := range n.set {
		if s {
			first = false
			break
		}
	}

	var previous int64
	if n.set[n.index] {
		previous = n.offsets[n.index]
	}

	next := (n.index + 1) % rollingAverageWindowSize
	n.offsets[next] = offset
	n.set[next] = true
	n.index = next

	switch {
	case first:
		logger.Log.Info("first timestamp offset received", zap.Int64("offset_ms", offset))
	case abs(previous-offset) > 1000:
		logger.Log.Debug("timestamp offset changed more than 1s",
			zap.Int64("from_ms", previous),
			zap.Int64("to_ms", offset),
			zap.String("request", request),
		)
	}
}

// LatestTimestampOffset rolling average, 0 when nothing was recorded
func (n *NetworkTime) LatestTimestampOffset() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	var sum, count int64
	for i, s := range n.set {
		if s {
			sum += n.offsets[i]
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return floorDiv(sum, count)
}

// Now local ms minus the network offset
func (n *NetworkTime) Now() int64 {
	return n.local() - n.LatestTimestampOffset()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
