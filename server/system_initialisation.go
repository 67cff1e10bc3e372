package server

import (
	"context"
	"fmt"
)

// InitialiseSystem drops every session that can no longer be restored, so a
// restart never resumes an expired login, and logs where the dashboard reads
// its stations from.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	purged, err := s.auth.PurgeExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to purge expired sessions: %w", err)
	}

	s.logger.Info().
		Str("base_url", s.config.GetBaseURL()).
		Str("stations_api", s.config.GetStationsAPIURL()).
		Bool("mock_api", s.mockAPI != nil).
		Str("storage", string(s.config.GetStorageBackend())).
		Int("page_size", s.config.GetStationsPageSize()).
		Dur("session_ttl", s.config.GetSessionTTL()).
		Int("purged_sessions", purged).
		Msg("System configuration")
	return nil
}
