package scheduler

import (
	"path/filepath"
	"statusdash/internal/persistence"
	storeInterfaces "statusdash/internal/persistence/interfaces"
	"statusdash/internal/providers"
	"statusdash/internal/scheduler/interfaces"
	"statusdash/internal/structures"
	"sync"
	"time"

	"github.com/roylee0704/gron"
)

// HealthRecorder stores a health snapshot in the cache.
type HealthRecorder interface {
	RecordSnapshot()
}

// Scheduler runs the periodic maintenance jobs. The health job refreshes the
// health snapshot; the sweep job removes temp files left by interrupted
// writes and compresses quarantined configuration files.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	health      HealthRecorder
	fileManager *persistence.FileManager
	compressor  storeInterfaces.CompressorInterface
	cron        *gron.Cron
	now         func() time.Time
	opsMu       sync.Mutex
	stopped     bool
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	healthInterval := s.config.Scheduler.HealthInterval
	sweepInterval := s.config.Scheduler.SweepInterval

	if healthInterval > 0 {
		s.cron.AddFunc(gron.Every(healthInterval), func() {
			s.opsMu.Lock()
			defer s.opsMu.Unlock()

			s.health.RecordSnapshot()
			s.logger.Debugf(providers.TypeApp, "Health snapshot recorded")
		})
	}

	if sweepInterval > 0 {
		s.cron.AddFunc(gron.Every(sweepInterval), func() {
			s.Sweep()
		})
	}

	s.cron.Start()
}

// Stop halts the jobs and closes the compressor. Sweep keeps removing temp
// files after Stop but no longer archives.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	if !s.stopped {
		s.stopped = true
		s.compressor.Close()
	}
}

// Sweep removes stale temp files from the state directories and returns how
// many were removed.
func (s *Scheduler) Sweep() int {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	now := s.now()
	total := 0
	for _, dir := range s.dirs() {
		n, err := s.fileManager.RemoveStaleTemps(dir, s.config.Scheduler.TempMaxAge, now)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while sweeping %s: %s", dir, err)
			continue
		}
		total += n
	}
	if total > 0 {
		s.logger.Infof(providers.TypeApp, "Removed %d stale temp files", total)
	}
	if !s.stopped {
		s.archiveQuarantined()
	}
	return total
}

func (s *Scheduler) archiveQuarantined() {
	pending, err := s.fileManager.QuarantinedConfigs(s.config.Paths.ConfigFile)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Unable to list quarantined configurations: %s", err)
		return
	}
	for _, path := range pending {
		archived, err := s.fileManager.ArchiveFile(path, s.compressor)
		if err != nil {
			s.logger.Errorf(providers.TypeApp, "Unable to archive %s: %s", path, err)
			continue
		}
		s.logger.Infof(providers.TypeApp, "Archived quarantined configuration to %s", archived)
	}
}

func (s *Scheduler) dirs() []string {
	configDir := filepath.Dir(s.config.Paths.ConfigFile)
	cacheDir := filepath.Clean(s.config.Paths.CacheDir)
	if configDir == cacheDir {
		return []string{configDir}
	}
	return []string{configDir, cacheDir}
}

func NewScheduler(config *structures.Config, logger providers.Logger, health HealthRecorder, fileManager *persistence.FileManager, compressor storeInterfaces.CompressorInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		health:      health,
		fileManager: fileManager,
		compressor:  compressor,
		now:         time.Now,
	}
}
