package workers

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vision4k/vision4k-backend/media"
	"github.com/vision4k/vision4k-backend/models"
	"github.com/vision4k/vision4k-backend/repository"
)

// StorageJanitor finishes two-phase wallpaper deletions: a deleted wallpaper
// is first soft-deleted (hidden everywhere), then its storage objects are
// removed, and only after that the row is hard-deleted. The janitor retries
// the storage step for tombstones whose deletion failed in-request.
type StorageJanitor struct {
	store    media.Store
	repo     repository.WallpaperRepositoryInterface
	interval time.Duration

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewStorageJanitor starts the periodic sweep.
func NewStorageJanitor(store media.Store, repo repository.WallpaperRepositoryInterface, interval time.Duration) *StorageJanitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	j := &StorageJanitor{
		store:    store,
		repo:     repo,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go j.run()
	logrus.WithField("interval", interval).Info("workers: storage janitor started")
	return j
}

// Stop halts the sweeping loop.
func (j *StorageJanitor) Stop() {
	j.stopOnce.Do(func() {
		close(j.stopChan)
	})
	<-j.doneChan
}

func (j *StorageJanitor) run() {
	defer close(j.doneChan)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.Sweep()
		case <-j.stopChan:
			return
		}
	}
}

// Sweep processes all pending-delete tombstones once. Exported so the
// deletion handler can trigger an immediate pass.
func (j *StorageJanitor) Sweep() {
	tombstones, err := j.repo.ListPendingDelete()
	if err != nil {
		logrus.WithError(err).Error("workers: janitor failed to list tombstones")
		return
	}

	for _, w := range tombstones {
		if j.cleanStorage(&w) {
			if err := j.repo.HardDelete(w.ID); err != nil {
				logrus.WithError(err).WithField("wallpaper_id", w.ID).
					Error("workers: janitor failed to hard-delete row")
			}
		}
	}
}

// cleanStorage removes the wallpaper's storage objects. Returns true once
// nothing is left on disk for this row (external URLs count as nothing).
func (j *StorageJanitor) cleanStorage(w *models.Wallpaper) bool {
	ok := true

	if loc := media.ParseLocation(w.ImagePath); !loc.IsExternal() {
		if err := j.store.Delete(loc.Key); err != nil {
			logrus.WithError(err).WithField("key", loc.Key).
				Warn("workers: janitor failed to delete image, will retry")
			ok = false
		}
	}

	if w.ThumbnailPath != nil && *w.ThumbnailPath != w.ImagePath {
		if loc := media.ParseLocation(*w.ThumbnailPath); !loc.IsExternal() {
			if err := j.store.Delete(loc.Key); err != nil {
				logrus.WithError(err).WithField("key", loc.Key).
					Warn("workers: janitor failed to delete thumbnail, will retry")
				ok = false
			}
		}
	}

	return ok
}
