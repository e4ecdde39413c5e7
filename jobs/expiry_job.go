package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ExpireStalePendingBookings cancels PENDING bookings nobody confirmed in
// time, refunding their payments.
func (r *Runner) ExpireStalePendingBookings() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := r.Bookings.ExpireStale(ctx, r.PendingTTL)
	if err != nil {
		log.Error().Err(err).Msg("expire stale bookings")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("cancelled stale pending bookings")
	}
}
