package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cfb-pickem-go/logging"
	"cfb-pickem-go/models"
)

// ScoreSource supplies game updates (scores and status) from the score
// ingestion collaborator
type ScoreSource interface {
	FetchGames(ctx context.Context, season int) ([]*models.Game, error)
}

// GameWriter persists fetched game updates
type GameWriter interface {
	Upsert(ctx context.Context, game *models.Game) error
}

// UpdaterStatus is a snapshot of the updater's scheduling state
type UpdaterStatus struct {
	Running       bool      `json:"running"`
	LastCycle     time.Time `json:"last_cycle,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	CompletedRuns int       `json:"completed_runs"`
}

// ScoreUpdater polls the score source on an interval and pushes completed
// games through the scoring engine. The timer loop is a thin shell around
// ComputeUpdate, which holds all the per-cycle logic and no timer state.
type ScoreUpdater struct {
	source   ScoreSource
	games    GameWriter
	scoring  *ScoringService
	season   int
	interval time.Duration
	logger   *logging.Logger

	mu       sync.Mutex
	ticker   *time.Ticker
	stopChan chan struct{}
	status   UpdaterStatus
}

// NewScoreUpdater creates a new score updater
func NewScoreUpdater(source ScoreSource, games GameWriter, scoring *ScoringService, season int, interval time.Duration) *ScoreUpdater {
	return &ScoreUpdater{
		source:   source,
		games:    games,
		scoring:  scoring,
		season:   season,
		interval: interval,
		logger:   logging.WithPrefix("ScoreUpdater"),
	}
}

// Start begins the polling loop. Calling Start on a running updater is a
// no-op.
func (u *ScoreUpdater) Start() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.status.Running {
		u.logger.Warn("Already running")
		return
	}

	u.logger.Infof("Starting score polling every %v for season %d", u.interval, u.season)
	u.status.Running = true
	u.ticker = time.NewTicker(u.interval)
	u.stopChan = make(chan struct{})

	go u.runCycle()
	go func(ticker *time.Ticker, stop chan struct{}) {
		for {
			select {
			case <-ticker.C:
				go u.runCycle()
			case <-stop:
				return
			}
		}
	}(u.ticker, u.stopChan)
}

// Stop halts the polling loop
func (u *ScoreUpdater) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()

	if !u.status.Running {
		return
	}

	u.logger.Info("Stopping score polling")
	u.status.Running = false
	u.ticker.Stop()
	close(u.stopChan)
}

// Status returns a snapshot of the updater's state
func (u *ScoreUpdater) Status() UpdaterStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.status
}

// runCycle executes one cycle and records the outcome in the status
func (u *ScoreUpdater) runCycle() {
	err := u.ComputeUpdate(context.Background(), u.season)

	u.mu.Lock()
	defer u.mu.Unlock()
	u.status.LastCycle = time.Now()
	u.status.CompletedRuns++
	u.status.LastError = ""
	if err != nil {
		u.status.LastError = err.Error()
	}
}

// ComputeUpdate performs one polling cycle: fetch game updates, persist
// them, and score the completed ones. Scoring is idempotent, so overlapping
// cycles for the same games are harmless.
func (u *ScoreUpdater) ComputeUpdate(ctx context.Context, season int) error {
	games, err := u.source.FetchGames(ctx, season)
	if err != nil {
		return fmt.Errorf("failed to fetch game updates: %w", err)
	}

	if len(games) == 0 {
		u.logger.Debug("No game updates received")
		return nil
	}

	completed := 0
	for _, game := range games {
		if err := u.games.Upsert(ctx, game); err != nil {
			return fmt.Errorf("failed to persist game %d: %w", game.ID, err)
		}

		if game.IsCompleted() {
			if err := u.scoring.ScoreGame(ctx, game); err != nil {
				return err
			}
			completed++
		}
	}

	u.logger.Infof("Cycle complete: %d game(s) updated, %d completed and scored", len(games), completed)
	return nil
}
