package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/talent-allocator/internal/logger"
	"alfredoptarigan/talent-allocator/internal/models"
	"alfredoptarigan/talent-allocator/internal/repositories"
)

const (
	jobQueueSize        = 100
	pollBatchSize       = 10
	defaultPollInterval = 10 * time.Second

	ErrorKindFatal = "fatal"
)

// ResumeProcessor is the part of the pipeline the worker drives.
type ResumeProcessor interface {
	Process(ctx context.Context, in ResumeInput) (*models.ResumeResult, error)
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(jobID uuid.UUID)
}

type worker struct {
	jobs         repositories.IntakeJobRepository
	pipeline     ResumeProcessor
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	log          *zap.Logger
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewWorker processes queued intake jobs. Jobs still queued after a restart are picked up by the poller.
func NewWorker(
	jobs repositories.IntakeJobRepository,
	pipeline ResumeProcessor,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &worker{
		jobs:         jobs,
		pipeline:     pipeline,
		jobQueue:     make(chan uuid.UUID, jobQueueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		log:          logger.WithFields(log, zap.String("component", "intake_worker")),
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollQueuedJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("worker stopped")
	})
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(jobID uuid.UUID) {
	select {
	case w.jobQueue <- jobID:
		w.log.Debug("job enqueued", zap.Stringer("job_id", jobID))
	case <-w.stopChan:
		w.log.Warn("worker stopped, cannot enqueue job", zap.Stringer("job_id", jobID))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log := w.log.With(zap.Int("worker", workerID))

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case jobID := <-w.jobQueue:
			w.runJob(ctx, jobID, log.With(zap.Stringer("job_id", jobID)))
		}
	}
}

func (w *worker) runJob(ctx context.Context, jobID uuid.UUID, log *zap.Logger) {
	if err := w.jobs.Claim(ctx, jobID); err != nil {
		if errors.Is(err, repositories.ErrConcurrentUpdate) {
			log.Debug("job already claimed")
			return
		}
		log.Error("failed to claim job", zap.Error(err))
		return
	}

	job, err := w.jobs.FindByID(ctx, jobID)
	if err != nil {
		log.Error("failed to load job", zap.Error(err))
		return
	}

	result, err := w.pipeline.Process(ctx, ResumeInput{
		Filename: job.OriginalFilename,
		Path:     job.FilePath,
		Actor:    job.Actor,
	})
	if err != nil {
		if markErr := w.jobs.MarkFailed(ctx, jobID, ErrorKindFatal, err.Error()); markErr != nil {
			log.Error("failed to mark job failed", zap.Error(markErr))
		}
		return
	}

	if err := w.jobs.MarkCompleted(ctx, jobID, result.CandidateID, result.Degraded); err != nil {
		log.Error("failed to mark job completed", zap.Error(err))
		return
	}

	log.Info("job completed", zap.Uint(logger.FieldCandidateID, result.CandidateID))
}

func (w *worker) pollQueuedJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			queued, err := w.jobs.FindQueued(ctx, pollBatchSize)
			if err != nil {
				w.log.Warn("failed to fetch queued jobs", zap.Error(err))
				continue
			}

			if len(queued) > 0 {
				w.log.Info("found queued jobs", zap.Int("count", len(queued)))
			}

			for _, job := range queued {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
