package services

import (
	"context"
	"time"

	"seatbooking/internal/domain"
	"seatbooking/internal/domain/models"
	"seatbooking/internal/lock"
	"seatbooking/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	sweepLockKey   = "seatbooking:expiry-sweeper"
	sweepBatchSize = 500
)

type ExpiredLister interface {
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.ExpiredBooking, error)
}

type BookingExpirer interface {
	ExpireBooking(ctx context.Context, id string) (models.Booking, error)
}

// SweepResult summarizes one pass.
type SweepResult struct {
	Scanned int
	Expired int
	Skipped int
	Failed  int
	Locked  bool
}

// ExpirySweeper returns seats held by PENDING bookings that outlived
// Threshold. It runs next to the HTTP server and shares only the database
// with it.
type ExpirySweeper struct {
	Lister    ExpiredLister
	Expirer   BookingExpirer
	Locker    lock.Locker
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Interval  time.Duration
	Threshold time.Duration
	BatchSize int
	Now       func() time.Time
}

func (s ExpirySweeper) interval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return domain.DefaultSweepInterval
}

func (s ExpirySweeper) threshold() time.Duration {
	if s.Threshold > 0 {
		return s.Threshold
	}
	return domain.DefaultExpiryThreshold
}

func (s ExpirySweeper) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return sweepBatchSize
}

func (s ExpirySweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Run sweeps once per interval until ctx is cancelled. Failures never stop
// the loop.
func (s ExpirySweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval())
	defer ticker.Stop()

	s.Logger.Info().
		Str("module", "SWEEPER").
		Dur("interval", s.interval()).
		Dur("threshold", s.threshold()).
		Msg("expiry sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.Logger.Info().Str("module", "SWEEPER").Msg("expiry sweeper stopped")
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce expires every stale PENDING booking it can find. Each booking is
// handled in its own transaction; one failure does not stop the others.
func (s ExpirySweeper) SweepOnce(ctx context.Context) SweepResult {
	var res SweepResult

	if s.Locker != nil {
		lease, ok, err := s.Locker.TryLock(ctx, sweepLockKey, s.interval())
		if err != nil {
			// Redis being down must not stop reclamation.
			s.Logger.Warn().Str("module", "SWEEPER").Err(err).Msg("lease unavailable, sweeping anyway")
		} else if !ok {
			res.Locked = true
			s.countRun("locked")
			return res
		} else {
			defer func() {
				if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
					s.Logger.Warn().Str("module", "SWEEPER").Err(err).Msg("lease release failed")
				}
			}()
		}
	}

	cutoff := s.now().Add(-s.threshold())
	expired, err := s.Lister.ListExpired(ctx, cutoff, s.batchSize())
	if err != nil {
		s.Logger.Error().Str("module", "SWEEPER").Err(err).Msg("scan for expired bookings failed")
		s.countRun("scan_error")
		return res
	}
	res.Scanned = len(expired)

	for _, e := range expired {
		if ctx.Err() != nil {
			break
		}
		_, err := s.Expirer.ExpireBooking(ctx, e.ID)
		switch {
		case err == nil:
			res.Expired++
			s.countBooking("expired")
			s.Logger.Info().
				Str("module", "SWEEPER").
				Str("booking_id", e.ID).
				Str("vehicle_id", e.VehicleID).
				Int("seat_count", len(e.SeatIDs)).
				Time("created_at", e.CreatedAt).
				Msg("booking expired, seats released")
		case domain.IsStateConflict(err), domain.IsNotFound(err):
			res.Skipped++
			s.countBooking("skipped")
		default:
			res.Failed++
			s.countBooking("failed")
			s.Logger.Error().
				Str("module", "SWEEPER").
				Str("booking_id", e.ID).
				Str("kind", string(domain.KindOf(err))).
				Err(err).
				Msg("expire booking failed")
		}
	}

	s.countRun("ok")
	if res.Scanned > 0 {
		s.Logger.Info().
			Str("module", "SWEEPER").
			Int("scanned", res.Scanned).
			Int("expired", res.Expired).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("sweep finished")
	}
	return res
}

func (s ExpirySweeper) countRun(outcome string) {
	if s.Metrics != nil {
		s.Metrics.SweepRuns.WithLabelValues(outcome).Inc()
	}
}

func (s ExpirySweeper) countBooking(result string) {
	if s.Metrics != nil {
		s.Metrics.SweptBookings.WithLabelValues(result).Inc()
	}
}
