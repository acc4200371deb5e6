package workers

import (
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/repository"
)

// ThumbnailJob asks for a thumbnail of one stored wallpaper.
type ThumbnailJob struct {
	WallpaperID uint
	ImageKey    string
}

// ThumbnailGenerator runs a pool of workers that derive thumbnails for
// uploaded wallpapers outside the request path. A wallpaper without a
// thumbnail simply serves its full image until the job lands.
type ThumbnailGenerator struct {
	jobQueue  chan ThumbnailJob
	store     media.Store
	processor *media.Processor
	repo      repository.WallpaperRepositoryInterface
	maxSize   int

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}

	mu      sync.Mutex
	pending map[uint]bool
}

// NewThumbnailGenerator starts the worker pool.
func NewThumbnailGenerator(store media.Store, processor *media.Processor, repo repository.WallpaperRepositoryInterface, maxSize, queueSize, numWorkers int) *ThumbnailGenerator {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	tg := &ThumbnailGenerator{
		jobQueue:  make(chan ThumbnailJob, queueSize),
		store:     store,
		processor: processor,
		repo:      repo,
		maxSize:   maxSize,
		stopChan:  make(chan struct{}),
		pending:   make(map[uint]bool),
	}
	tg.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go tg.worker(i)
	}
	logrus.WithFields(logrus.Fields{"workers": numWorkers, "queue": queueSize}).
		Info("workers: thumbnail generator started")
	return tg
}

// Enqueue schedules a thumbnail job unless one is already pending for the
// wallpaper or the queue is full. A dropped job only means the full image
// keeps serving as its own thumbnail.
func (tg *ThumbnailGenerator) Enqueue(job ThumbnailJob) {
	tg.mu.Lock()
	if tg.pending[job.WallpaperID] {
		tg.mu.Unlock()
		return
	}
	tg.pending[job.WallpaperID] = true
	tg.mu.Unlock()

	select {
	case tg.jobQueue <- job:
	default:
		tg.mu.Lock()
		delete(tg.pending, job.WallpaperID)
		tg.mu.Unlock()
		logrus.WithField("wallpaper_id", job.WallpaperID).
			Warn("workers: thumbnail queue full, dropping job")
	}
}

// Stop signals the workers and waits for in-flight jobs to finish.
func (tg *ThumbnailGenerator) Stop() {
	tg.stopOnce.Do(func() {
		close(tg.stopChan)
	})
	tg.wg.Wait()
}

func (tg *ThumbnailGenerator) worker(id int) {
	defer tg.wg.Done()
	for {
		select {
		case job := <-tg.jobQueue:
			if err := tg.process(job); err != nil {
				logrus.WithError(err).WithField("wallpaper_id", job.WallpaperID).
					Error("workers: thumbnail job failed")
			}
			tg.mu.Lock()
			delete(tg.pending, job.WallpaperID)
			tg.mu.Unlock()
		case <-tg.stopChan:
			logrus.WithField("worker", id).Debug("workers: thumbnail worker stopping")
			return
		}
	}
}

func (tg *ThumbnailGenerator) process(job ThumbnailJob) error {
	if media.ParseLocation(job.ImageKey).IsExternal() {
		// seeded external rows have no local original to thumbnail
		return nil
	}

	reader, _, err := tg.store.Open(job.ImageKey)
	if err != nil {
		return fmt.Errorf("failed to open original %s: %w", job.ImageKey, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return fmt.Errorf("failed to decode original %s: %w", job.ImageKey, err)
	}

	thumbKey, err := tg.processor.GenerateThumbnail(img, tg.maxSize)
	if err != nil {
		return err
	}

	if err := tg.repo.SetThumbnailPath(job.WallpaperID, &thumbKey); err != nil {
		// wallpaper vanished while we worked; drop the orphan thumbnail
		if delErr := tg.store.Delete(thumbKey); delErr != nil {
			logrus.WithError(delErr).WithField("key", thumbKey).
				Warn("workers: failed to remove orphan thumbnail")
		}
		return err
	}
	return nil
}
