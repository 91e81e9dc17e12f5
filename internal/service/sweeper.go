package service

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically force-finishes challenges past their deadline, so
// expiry does not depend on either participant polling the time-limit
// endpoint.
type Sweeper struct {
	challengeService ChallengeTestService
	interval         time.Duration
	stop             chan struct{}
	done             chan struct{}
}

func NewSweeper(challengeService ChallengeTestService, interval time.Duration) *Sweeper {
	return &Sweeper{
		challengeService: challengeService,
		interval:         interval,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
	log.Info().Dur("interval", s.interval).Msg("Challenge sweeper started")
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
	log.Info().Msg("Challenge sweeper stopped")
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.challengeService.SweepExpired(nil); err != nil {
				log.Error().Err(err).Msg("Challenge sweep failed")
			}
		case <-s.stop:
			return
		}
	}
}
