package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sitesupply/procurement-api/internal/repository"
	"go.uber.org/zap"
)

// requestNumberScope keys the sequence rows used for request numbers.
const requestNumberScope = "material_request"

// NumberSequenceService generates unique, human-readable request numbers.
//
// Format: REQ-{YEAR}-{SEQUENCE} with the sequence zero-padded to 4 digits,
// e.g. REQ-2026-0001. The sequence is scoped per calendar year and resets
// each January; the embedded year keeps numbers unique across the reset.
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(repo *repository.NumberSequenceRepository, logger *zap.Logger) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateRequestNumber returns the next formatted request number. The
// underlying increment is atomic, so concurrent creates never share a
// number.
func (s *NumberSequenceService) GenerateRequestNumber(ctx context.Context) (string, error) {
	year := time.Now().UTC().Year()

	next, err := s.repo.NextNumber(ctx, requestNumberScope, year)
	if err != nil {
		s.logger.Error("failed to get next sequence number",
			zap.Int("year", year),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate request number: %w", err)
	}

	number := FormatRequestNumber(year, next)

	s.logger.Info("generated request number",
		zap.String("number", number),
		zap.Int("year", year),
		zap.Int("sequence", next),
	)
	return number, nil
}

// FormatRequestNumber renders a sequence value as a request number. The
// year prefix keeps numbers from colliding when the sequence resets.
func FormatRequestNumber(year, sequence int) string {
	return fmt.Sprintf("REQ-%d-%04d", year, sequence)
}

// CurrentSequence returns the last issued sequence for a year without
// incrementing.
func (s *NumberSequenceService) CurrentSequence(ctx context.Context, year int) (int, error) {
	return s.repo.CurrentSequence(ctx, requestNumberScope, year)
}
