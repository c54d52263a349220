package db

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/udisondev/masterserver/internal/model"
)

// newBreaker создаёт circuit breaker с общими для хранилищ настройками:
// размыкание после трёх подряд ошибок, одна пробная попытка раз в 30 секунд.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// WithBreaker оборачивает StatsStore в circuit breaker, чтобы недоступная
// база не держала worker на таймаутах при каждом обращении.
func WithBreaker(store StatsStore) StatsStore {
	return &breakerStore{inner: store, cb: newBreaker("stats")}
}

type breakerStore struct {
	inner StatsStore
	cb    *gobreaker.CircuitBreaker
}

func (s *breakerStore) InsertGameStats(ctx context.Context, stats model.GameStats) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.InsertGameStats(ctx, stats)
	})
	return err
}

func (s *breakerStore) SaveAchievement(ctx context.Context, player string, achievementID uint8) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.SaveAchievement(ctx, player, achievementID)
	})
	return err
}

func (s *breakerStore) InsertLevelInfo(ctx context.Context, name, levelType string, minPlayers, maxPlayers int) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.inner.InsertLevelInfo(ctx, name, levelType, minPlayers, maxPlayers)
	})
	return err
}

func (s *breakerStore) PlayerProfile(ctx context.Context, player string) (PlayerProfile, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.inner.PlayerProfile(ctx, player)
	})
	if err != nil {
		return PlayerProfile{}, err
	}
	return res.(PlayerProfile), nil
}

func (s *breakerStore) HighScores(ctx context.Context, scoresPerGroup int) ([]HighScoreGroup, error) {
	res, err := s.cb.Execute(func() (any, error) {
		return s.inner.HighScores(ctx, scoresPerGroup)
	})
	if err != nil {
		return nil, err
	}
	return res.([]HighScoreGroup), nil
}

// Close не проходит через breaker: закрыть базу нужно в любом состоянии.
func (s *breakerStore) Close() error {
	return s.inner.Close()
}

// VerifierWithBreaker оборачивает CredentialVerifier в circuit breaker.
// При разомкнутой цепи проверка сразу возвращает CantConnect.
func VerifierWithBreaker(v CredentialVerifier) CredentialVerifier {
	return &breakerVerifier{inner: v, cb: newBreaker("forum")}
}

type breakerVerifier struct {
	inner CredentialVerifier
	cb    *gobreaker.CircuitBreaker
}

func (b *breakerVerifier) Verify(ctx context.Context, name, password string) (AuthResult, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.inner.Verify(ctx, name, password)
	})
	if err != nil {
		return AuthResult{Status: AuthCantConnect}, err
	}
	return res.(AuthResult), nil
}
