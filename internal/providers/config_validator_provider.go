package providers

import (
	"fmt"
	"statusdash/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	sections := []struct {
		name  string
		value any
	}{
		{"webServer", &c.conf.WebServer},
		{"paths", &c.conf.Paths},
		{"logger", &c.conf.Logger},
		{"widgets", &c.conf.Widgets},
	}

	for _, s := range sections {
		v := validate.Struct(s.value)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", s.name, v.Errors.One())
		}
	}

	if c.conf.Cache.Enabled && c.conf.Cache.TTL < 0 {
		return fmt.Errorf("invalid cache config: negative ttl")
	}
	sched := c.conf.Scheduler
	if sched.HealthInterval < 0 || sched.SweepInterval < 0 || sched.TempMaxAge < 0 {
		return fmt.Errorf("invalid scheduler config: negative duration")
	}
	return nil
}
