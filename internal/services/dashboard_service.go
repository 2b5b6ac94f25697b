package services

import (
	"context"

	"github.com/isdelr/talakhisi-be/internal/models"
	"github.com/rs/zerolog/log"
)

// HostStatsFunc samples the host machine. Errors are logged, not returned.
type HostStatsFunc func(ctx context.Context) (*models.HostStats, error)

// DashboardServiceProvider defines the interface for dashboard statistics.
type DashboardServiceProvider interface {
	GetStatistics(ctx context.Context) (models.DashboardStats, error)
}

// DashboardService aggregates the administration counters.
type DashboardService struct {
	accounts AccountServiceProvider
	library  LibraryServiceProvider
	feedback FeedbackServiceProvider
	messages MessageServiceProvider
	host     HostStatsFunc
}

// NewDashboardService creates a new DashboardService. host may be nil.
func NewDashboardService(accounts AccountServiceProvider, library LibraryServiceProvider, feedback FeedbackServiceProvider, messages MessageServiceProvider, host HostStatsFunc) *DashboardService {
	return &DashboardService{accounts: accounts, library: library, feedback: feedback, messages: messages, host: host}
}

// GetStatistics counts accounts, saved lessons, feedback and messages.
func (s *DashboardService) GetStatistics(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return stats, err
	}
	stats.Accounts = len(accounts)
	for _, a := range accounts {
		if a.Role == models.RoleAdmin {
			stats.Admins++
		}
	}

	stats.Libraries, stats.SavedLessons, err = s.library.Totals(ctx)
	if err != nil {
		return stats, err
	}

	feedback, err := s.feedback.List(ctx)
	if err != nil {
		return stats, err
	}
	stats.Feedback = len(feedback)
	for _, f := range feedback {
		if f.Status == models.FeedbackNew {
			stats.NewFeedback++
		}
	}

	messages, err := s.messages.List(ctx)
	if err != nil {
		return stats, err
	}
	stats.Messages = len(messages)

	if s.host != nil {
		host, err := s.host(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Dashboard: could not sample host stats")
		} else {
			stats.Host = host
		}
	}
	return stats, nil
}
