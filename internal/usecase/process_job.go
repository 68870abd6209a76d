package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fiapx/fiapx-frametool/internal/domain/entity"
	"github.com/fiapx/fiapx-frametool/internal/domain/port"
	"github.com/fiapx/fiapx-frametool/internal/infra/metrics"
	"github.com/fiapx/fiapx-frametool/internal/media"
)

// ProcessExtractionUseCase runs queued window extractions: download the
// source, materialize the window, archive the outputs and upload the archive.
type ProcessExtractionUseCase struct {
	storage   port.VideoStorage
	decoder   port.Decoder
	pipeline  *FrameTransformPipeline
	zipper    port.Zipper
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	cfg       ProcessExtractionConfig
}

type ProcessExtractionConfig struct {
	TempDir    string
	MaxRetries int
	VideoDir   string
	ImageDir   string
	VideoExt   string
	Extensions []string
}

func NewProcessExtractionUseCase(
	storage port.VideoStorage,
	decoder port.Decoder,
	pipeline *FrameTransformPipeline,
	zipper port.Zipper,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessExtractionConfig,
) *ProcessExtractionUseCase {
	return &ProcessExtractionUseCase{
		storage:   storage,
		decoder:   decoder,
		pipeline:  pipeline,
		zipper:    zipper,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

// Execute handles one delivery. A non-nil error means the job should be
// retried as attempt+1; malformed and exhausted jobs are routed to the DLQ
// and return nil.
func (uc *ProcessExtractionUseCase) Execute(ctx context.Context, rawMsg []byte, attempt int) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessExtractionUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ExtractionJobMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
		return nil
	}
	if err := msg.Validate(); err != nil {
		uc.logger.Error("invalid extraction job", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_job: "+err.Error())
		metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()
		return nil
	}

	job, err := entity.NewExtractionJob(msg, attempt, uc.cfg.MaxRetries)
	if err != nil {
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_job: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
		attribute.Int("job.attempt", attempt),
	)

	log := uc.logger.With(
		zap.String("job_id", msg.JobID.String()),
		zap.String("video_key", msg.VideoKey),
		zap.Int("attempt", attempt),
	)

	if attempt > uc.cfg.MaxRetries {
		log.Warn("job exhausted retries, sending to DLQ")
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
	}

	job.MarkProcessing()
	uc.publishStatus(ctx, job, log)

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.processExtraction(ctx, job, log); err != nil {
		log.Error("extraction failed", zap.Error(err))
		if errors.Is(err, media.ErrUnsupportedFormat) {
			return uc.handlePermanentFailure(ctx, job, msg, rawMsg, err.Error())
		}
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, err.Error(), log)
	}

	uc.publishStatus(ctx, job, log)
	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.PipelineDuration.WithLabelValues("job").Observe(time.Since(totalTimer).Seconds())

	log.Info("job completed successfully",
		zap.Int("frame_count", job.FrameCount),
		zap.String("archive_key", job.ArchiveKey),
	)
	return nil
}

func (uc *ProcessExtractionUseCase) processExtraction(ctx context.Context, job *entity.ExtractionJob, log *zap.Logger) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.cfg.TempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download source from MinIO
	dlStart := time.Now()
	ctx2, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input"+path.Ext(job.VideoKey))
	err := uc.storage.DownloadVideo(ctx2, job.VideoKey, videoPath)
	spanDl.End()
	if err != nil {
		return fmt.Errorf("download_video: %w", err)
	}
	metrics.PipelineDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Materialize the window
	stream, err := media.Open(ctx, uc.decoder, videoPath, uc.cfg.Extensions)
	if err != nil {
		return fmt.Errorf("open_video: %w", err)
	}
	defer stream.Close()

	outDir := filepath.Join(workDir, "out")
	res, err := uc.pipeline.Run(ctx, stream, job.Window, Outputs{
		VideoPath: filepath.Join(outDir, uc.cfg.VideoDir, job.OutputName+uc.cfg.VideoExt),
		ImageDir:  filepath.Join(outDir, uc.cfg.ImageDir),
		Name:      job.OutputName,
	}, TransformOptions{Rotation: job.Rotation})
	if err != nil {
		return fmt.Errorf("transform_frames: %w", err)
	}

	// Archive outputs
	zipStart := time.Now()
	ctx3, spanZip := tracer.Start(ctx, "create_zip")
	files, err := collectFiles(outDir)
	if err != nil {
		spanZip.End()
		return fmt.Errorf("collect_outputs: %w", err)
	}
	zipPath := filepath.Join(workDir, "result.zip")
	err = uc.zipper.CreateZip(ctx3, outDir, files, zipPath)
	spanZip.End()
	if err != nil {
		return fmt.Errorf("create_zip: %w", err)
	}
	metrics.PipelineDuration.WithLabelValues("zip").Observe(time.Since(zipStart).Seconds())

	// Upload archive
	upStart := time.Now()
	ctx4, spanUp := tracer.Start(ctx, "upload_archive")
	defer spanUp.End()
	archiveKey := fmt.Sprintf("%s/%s_%s.zip", job.UserID, job.OutputName, job.ID.String())
	zipFile, err := os.Open(zipPath)
	if err != nil {
		return fmt.Errorf("open_zip: %w", err)
	}
	defer zipFile.Close()
	zipStat, err := zipFile.Stat()
	if err != nil {
		return fmt.Errorf("stat_zip: %w", err)
	}
	if err := uc.storage.UploadArchive(ctx4, archiveKey, zipFile, zipStat.Size()); err != nil {
		return fmt.Errorf("upload_archive: %w", err)
	}
	metrics.PipelineDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	job.MarkCompleted(archiveKey, res.FramesWritten)
	log.Debug("archive uploaded", zap.Int("files", len(files)), zap.Int64("bytes", zipStat.Size()))
	return nil
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func (uc *ProcessExtractionUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.ExtractionJob,
	msg entity.ExtractionJobMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessExtractionUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.ExtractionJob,
	msg entity.ExtractionJobMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job)
	}

	return nil
}

func (uc *ProcessExtractionUseCase) publishStatus(ctx context.Context, job *entity.ExtractionJob, log *zap.Logger) {
	data, _ := json.Marshal(job.StatusMessage())
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
