package app

import (
	"context"

	"davcompat/internal/compat"
)

// Status is Inspect plus the registered addons, whether a password is
// stored, and the last recorded write.
func (s *Service) Status(ctx context.Context) (StatusResult, error) {
	sess, err := s.start(ctx)
	if err != nil {
		return StatusResult{}, err
	}
	defer s.close(sess)

	inspect, err := s.inspect(ctx, sess)
	if err != nil {
		return StatusResult{}, err
	}
	out := StatusResult{
		InspectResult: inspect,
		Addons:        sess.host.Addons(),
	}
	if inspect.GetPath != compat.PathUnsupported {
		password, err := sess.plugin.WebdavPassword(ctx)
		if err != nil {
			return StatusResult{}, wrapHostError(err)
		}
		out.HasPassword = password != ""
	}
	state, err := loadState(s.cfg.Paths.StatePath)
	if err != nil {
		return StatusResult{}, WrapExit(ExitIOFailure, err)
	}
	out.LastSetAt = state.LastSetAt
	out.LastSetStore = state.LastSetStore
	out.LastSetPath = state.LastSetPath
	return out, nil
}
