package monitoring

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInterval       = 30 * time.Second
	defaultAlertThreshold = 1000
	defaultAlertCooldown  = 5 * time.Minute
)

// GameCounter reports how many games a server holds
type GameCounter interface {
	GetActiveGames() int
}

// Config controls a Monitor
type Config struct {
	Interval       time.Duration
	AlertThreshold int
	AlertCooldown  time.Duration
}

// Monitor periodically logs goroutine and active game counts
type Monitor struct {
	mu       sync.RWMutex
	baseline int
	current  int
	peak     int
	games    int

	config    Config
	counter   GameCounter
	lastAlert time.Time
	logger    zerolog.Logger
	now       func() time.Time
}

// NewMonitor creates a monitor. counter may be nil when no games are served.
func NewMonitor(config Config, counter GameCounter, logger zerolog.Logger) *Monitor {
	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}
	if config.AlertThreshold <= 0 {
		config.AlertThreshold = defaultAlertThreshold
	}
	if config.AlertCooldown <= 0 {
		config.AlertCooldown = defaultAlertCooldown
	}

	baseline := runtime.NumGoroutine()
	return &Monitor{
		baseline: baseline,
		current:  baseline,
		peak:     baseline,
		config:   config,
		counter:  counter,
		logger:   logger.With().Str("component", "Monitor").Logger(),
		now:      time.Now,
	}
}

// Run reports every interval until ctx is done
func (m *Monitor) Run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Interface("panic", r).
				Msg("Monitor panicked - restarting")
			go m.Run(ctx)
		}
	}()

	m.logger.Info().
		Int("baseline", m.baseline).
		Dur("interval", m.config.Interval).
		Msg("Started monitoring")

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-ctx.Done():
			return
		}
	}
}

// check samples the counters once and logs them
func (m *Monitor) check() {
	current := runtime.NumGoroutine()
	games := 0
	if m.counter != nil {
		games = m.counter.GetActiveGames()
	}

	m.mu.Lock()
	m.current = current
	m.games = games
	if current > m.peak {
		m.peak = current
	}
	growth := current - m.baseline
	growthRate := 0.0
	if m.baseline > 0 {
		growthRate = float64(growth) / float64(m.baseline) * 100
	}

	now := m.now()
	shouldAlert := current > m.config.AlertThreshold &&
		now.Sub(m.lastAlert) > m.config.AlertCooldown
	if shouldAlert {
		m.lastAlert = now
	}
	peak := m.peak
	m.mu.Unlock()

	m.logger.Info().
		Int("goroutines", current).
		Int("baseline", m.baseline).
		Int("peak", peak).
		Float64("growth_rate", growthRate).
		Int("active_games", games).
		Msg("Server metrics")

	if shouldAlert {
		m.logger.Warn().
			Int("current", current).
			Int("threshold", m.config.AlertThreshold).
			Float64("growth_rate", growthRate).
			Msg("High goroutine count detected - possible leak")
	}
}

// GetMetrics returns the last sample
func (m *Monitor) GetMetrics() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Metrics{
		Goroutines:  m.current,
		Baseline:    m.baseline,
		Peak:        m.peak,
		Growth:      m.current - m.baseline,
		ActiveGames: m.games,
	}
}

// Metrics is one monitor sample
type Metrics struct {
	Goroutines  int `json:"goroutines"`
	Baseline    int `json:"baseline"`
	Peak        int `json:"peak"`
	Growth      int `json:"growth"`
	ActiveGames int `json:"active_games"`
}
