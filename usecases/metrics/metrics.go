package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studybot",
		Name:      "updates_received_total",
		Help:      "Telegram updates received, by kind of content.",
	}, []string{"kind"})

	ArtifactsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studybot",
		Name:      "artifacts_generated_total",
		Help:      "Study artifacts generated, by study mode.",
	}, []string{"mode"})

	ExtractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studybot",
		Name:      "extraction_failures_total",
		Help:      "Text extraction failures, by material kind.",
	}, []string{"kind"})
)
