package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry 服務自己的 registry, 測試時可換掉
var Registry = prometheus.NewRegistry()

var (
	// DeletionRequests 每次執行刪除的結果
	DeletionRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unsend",
		Name:      "deletion_requests_total",
		Help:      "Deletion requests by deletion type, conversation kind and outcome.",
	}, []string{"type", "kind", "status"})

	// SwarmDeletes swarm hash 刪除
	SwarmDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unsend",
		Name:      "swarm_delete_total",
		Help:      "Swarm delete-by-hash calls by outcome.",
	}, []string{"status"})

	// ControlSends unsend / group delete control messages
	ControlSends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unsend",
		Name:      "control_sends_total",
		Help:      "Outbound control messages by target and outcome.",
	}, []string{"target", "status"})

	// CommunityDeletes moderation api calls
	CommunityDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unsend",
		Name:      "community_delete_total",
		Help:      "Community moderation delete calls by outcome.",
	}, []string{"status"})

	// LocalMutations 本機刪除的訊息數
	LocalMutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "unsend",
		Name:      "local_messages_total",
		Help:      "Messages removed or tombstoned locally by mode.",
	}, []string{"mode"})
)

func init() {
	Registry.MustRegister(
		DeletionRequests,
		SwarmDeletes,
		ControlSends,
		CommunityDeletes,
		LocalMutations,
		collectors.NewGoCollector(),
	)
}

// Status label helper
func Status(ok bool) string {
	if ok {
		return "success"
	}
	return "failed"
}
