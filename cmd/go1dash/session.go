package main

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/al1y3vk/go1dash/pkg/robot"
	"github.com/al1y3vk/go1dash/pkg/session"
	"github.com/al1y3vk/go1dash/pkg/session/fake"
)

// linkToggler is implemented by sessions whose link can be cut by hand.
type linkToggler interface {
	SetConnected(up bool)
}

func newSession(cfg robot.SessionConfig, logger golog.Logger) (session.Session, error) {
	switch cfg.Kind {
	case robot.SessionSim:
		sim, err := fake.NewDefault(cfg.ScanHz, logger.Named("sim"))
		if err != nil {
			return nil, err
		}
		return sim, nil
	}
	return nil, errors.Errorf("unknown session kind %q", cfg.Kind)
}
