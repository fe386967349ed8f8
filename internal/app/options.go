package service

import "github.com/okian/skilltree/pkg/logger"

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects an already opened store. The service does not close it.
func WithStore(st Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithDatabase makes Start open its own store with driver and url.
func WithDatabase(driver, url string) Option {
	return func(s *Service) {
		s.driver = driver
		s.url = url
	}
}

// WithAutoMigrate applies schema migrations when Start opens the store.
func WithAutoMigrate(enabled bool) Option {
	return func(s *Service) {
		s.autoMigrate = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecentAssessmentsLimit caps the summary's recent assessments.
func WithRecentAssessmentsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.recentLimit = n
		}
	}
}
