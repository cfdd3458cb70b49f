package services

import (
	"context"

	"anneta.link/repositories"
)

// DonationStats is the aggregate over finalized donations.
type DonationStats struct {
	TotalCents    int64 `json:"total_cents"`
	DonationCount int64 `json:"donation_count"`
}

// IStatsService aggregates the finalized ledger for reporting.
type IStatsService interface {
	FinalizedStats(ctx context.Context, filter repositories.StatsFilter) (*DonationStats, error)
}

type StatsService struct {
	donationRepo repositories.IDonationRepository
}

func NewStatsService() IStatsService {
	return &StatsService{donationRepo: repositories.NewDonationRepository()}
}

func (s *StatsService) FinalizedStats(ctx context.Context, filter repositories.StatsFilter) (*DonationStats, error) {
	total, err := s.donationRepo.SumFinalized(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.donationRepo.CountFinalized(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DonationStats{TotalCents: total, DonationCount: count}, nil
}

var _ IStatsService = (*StatsService)(nil)
