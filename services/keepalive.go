package services

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RunKeepAlive pings url every interval until ctx is done. Hosting tiers that
// idle inactive instances stay warm this way.
func RunKeepAlive(ctx context.Context, url string, interval time.Duration, logger zerolog.Logger) {
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				logger.Warn().Err(err).Msg("keep-alive ping failed")
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn().Err(err).Msg("keep-alive ping failed")
				}
				continue
			}
			resp.Body.Close()
		}
	}
}
