package persistence

import (
	"fmt"
	"path/filepath"
	"statusdash/internal/models"
	"statusdash/internal/providers"
	"statusdash/internal/structures"
	"sync"
	"time"
)

const quarantineInfix = ".corrupt-"

// ConfigStore owns the configuration document on disk. Every Read parses
// the file again; there is no in-memory copy.
type ConfigStore struct {
	path         string
	templatePath string
	files        *FileManager
	logger       providers.Logger
	now          func() time.Time

	// serializes read-modify-write cycles within this process
	updateMu sync.Mutex
}

func NewConfigStore(conf *structures.Config, files *FileManager, logger providers.Logger) (*ConfigStore, error) {
	s := &ConfigStore{
		path:         conf.Paths.ConfigFile,
		templatePath: conf.Paths.ConfigTemplate,
		files:        files,
		logger:       logger,
		now:          time.Now,
	}

	if err := files.EnsureDir(filepath.Dir(s.path)); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if err := s.bootstrap(); err != nil {
		return nil, fmt.Errorf("bootstrap configuration %s: %w", s.path, err)
	}
	return s, nil
}

func (s *ConfigStore) Path() string {
	return s.path
}

func (s *ConfigStore) bootstrap() error {
	exists, err := s.files.Exists(s.path)
	if err != nil {
		return err
	}
	if !exists {
		return s.seed()
	}

	_, err = s.Read()
	if err == nil {
		s.files.chmod(s.path, FileMode)
		return nil
	}

	quarantine := fmt.Sprintf("%s%s%d", s.path, quarantineInfix, s.now().Unix())
	s.logger.Errorf(providers.TypeStore, "Configuration %s is unreadable (%s), moving it to %s", s.path, err, quarantine)
	if err := s.files.Rename(s.path, quarantine); err != nil {
		return fmt.Errorf("quarantine corrupt configuration: %w", err)
	}
	return s.write(models.NewDefaultDocument())
}

// seed creates the configuration file, preferring a verbatim copy of the
// template. A template that does not validate is replaced by defaults.
func (s *ConfigStore) seed() error {
	hasTemplate, err := s.files.Exists(s.templatePath)
	if err != nil {
		s.logger.Warnf(providers.TypeStore, "Unable to stat template %s: %s", s.templatePath, err)
	}

	if hasTemplate {
		err = s.files.CopyFile(s.templatePath, s.path, FileMode)
		if err == nil {
			if _, err = s.Read(); err == nil {
				s.logger.Infof(providers.TypeStore, "Seeded configuration %s from template %s", s.path, s.templatePath)
				return nil
			}
			s.logger.Warnf(providers.TypeStore, "Template %s is not a valid configuration: %s", s.templatePath, err)
		} else {
			s.logger.Warnf(providers.TypeStore, "Unable to copy template %s: %s", s.templatePath, err)
		}
	}

	s.logger.Infof(providers.TypeStore, "Seeding configuration %s from defaults", s.path)
	return s.write(models.NewDefaultDocument())
}

func (s *ConfigStore) Read() (*models.Document, error) {
	data, err := s.files.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigCorrupt, err)
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigCorrupt, err)
	}
	return doc, nil
}

// Update merges a raw partial document into the stored one. Sections present
// in partial replace the stored sections; the rest are kept as they are.
func (s *ConfigStore) Update(partial []byte) (*models.Document, error) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	current, err := s.Read()
	if err != nil {
		return nil, err
	}
	update, err := models.ParseUpdate(partial)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return s.merge(current, update)
}

// Apply is the typed form of Update for in-process callers.
func (s *ConfigStore) Apply(update *models.DocumentUpdate) (*models.Document, error) {
	s.updateMu.Lock()
	defer s.updateMu.Unlock()

	current, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return s.merge(current, update)
}

func (s *ConfigStore) merge(current *models.Document, update *models.DocumentUpdate) (*models.Document, error) {
	merged := current.Apply(update)
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	if err := s.write(merged); err != nil {
		return nil, err
	}
	s.logger.Infof(providers.TypeStore, "Configuration %s updated", s.path)
	return merged, nil
}

func (s *ConfigStore) write(doc *models.Document) error {
	data, err := models.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	return s.files.WriteFile(s.path, data, FileMode)
}
