package world

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// AssetLoader проверяет доступность окружения (скан памятника) до
// старта игрового цикла. Основной источник пробуется ограниченное
// число раз с фиксированной паузой, затем запасной; если недоступны
// оба — старт сессии проваливается.
type AssetLoader struct {
	Primary    string
	Fallback   string
	Attempts   int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// Resolve возвращает путь к доступному источнику окружения.
func (l *AssetLoader) Resolve(ctx context.Context) (string, error) {
	attempts := l.Attempts
	if attempts < 1 {
		attempts = 1
	}

	if path, err := l.tryOpen(ctx, l.Primary, attempts); err == nil {
		return path, nil
	} else {
		l.Logger.Warn().Err(err).Str("asset", l.Primary).
			Msg("primary environment asset unavailable, trying fallback")
	}

	if l.Fallback == "" {
		return "", fmt.Errorf("environment asset %s unavailable and no fallback configured", l.Primary)
	}
	if path, err := l.tryOpen(ctx, l.Fallback, attempts); err == nil {
		return path, nil
	} else {
		return "", fmt.Errorf("environment asset unavailable (primary %s, fallback %s): %w",
			l.Primary, l.Fallback, err)
	}
}

func (l *AssetLoader) tryOpen(ctx context.Context, path string, attempts int) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		f, err := os.Open(path)
		if err == nil {
			f.Close()
			l.Logger.Info().Str("asset", path).Int("attempt", attempt).
				Msg("environment asset available")
			return path, nil
		}
		lastErr = err
		l.Logger.Warn().Err(err).Str("asset", path).
			Int("attempt", attempt).Int("maxAttempts", attempts).
			Msg("environment asset check failed")

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(l.RetryDelay):
		}
	}
	return "", lastErr
}
