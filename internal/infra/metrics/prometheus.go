package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesDecodedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frametool_frames_decoded_total",
		Help: "Total number of frames decoded by transform pipelines",
	})

	FramesWrittenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frametool_frames_written_total",
		Help: "Total number of frames written, by sink",
	}, []string{"sink"})

	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "frametool_pipeline_duration_seconds",
		Help:    "Duration of pipeline and job stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	PlaybackQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frametool_playback_queue_depth",
		Help: "Frames waiting in the playback hand-off queue",
	})

	PlaybackDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frametool_playback_dropped_total",
		Help: "Frames discarded by a bounded hand-off queue",
	})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frametool_jobs_processed_total",
		Help: "Total number of extraction jobs processed, by status",
	}, []string{"status"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frametool_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frametool_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
