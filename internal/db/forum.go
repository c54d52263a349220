package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// MaxPlayerNameLength ограничивает длину ника при проверке учётных данных.
const MaxPlayerNameLength = 32

// ForumVerifier проверяет учётные данные игрока по базе пользователей форума.
// Схема phpBB: таблица <prefix>users с колонками username, username_clean
// и user_password (bcrypt).
type ForumVerifier struct {
	pool  *pgxpool.Pool
	users string // полное имя таблицы пользователей
}

// NewForumVerifier connects to the forum database and returns a verifier.
func NewForumVerifier(ctx context.Context, dsn, tablePrefix string) (*ForumVerifier, error) {
	for _, r := range tablePrefix {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return nil, fmt.Errorf("invalid forum table prefix %q", tablePrefix)
		}
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to forum database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging forum database: %w", err)
	}

	return &ForumVerifier{pool: pool, users: tablePrefix + "users"}, nil
}

// Close closes the underlying connection pool.
func (v *ForumVerifier) Close() {
	v.pool.Close()
}

// Verify ищет игрока по нику без учёта регистра и сверяет пароль.
// Возвращаемое имя берётся из базы: каноническое написание может
// отличаться регистром от того, что прислал клиент.
func (v *ForumVerifier) Verify(ctx context.Context, name, password string) (AuthResult, error) {
	if !validPlayerName(name) {
		return AuthResult{Status: AuthInvalidUsername}, nil
	}

	var storedName, storedHash string
	err := v.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT username, user_password FROM %s WHERE username_clean = $1`, v.users),
		strings.ToLower(name),
	).Scan(&storedName, &storedHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthResult{Status: AuthUnknownUser}, nil
		}
		return AuthResult{Status: AuthCantConnect}, fmt.Errorf("querying forum user %q: %w", name, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return AuthResult{Status: AuthWrongPassword}, nil
	}

	return AuthResult{Status: AuthAuthenticated, CorrectedName: storedName}, nil
}

// validPlayerName отклоняет пустые ники, ники с управляющими символами
// и ники с пробелами по краям.
func validPlayerName(name string) bool {
	if name == "" || len(name) > MaxPlayerNameLength {
		return false
	}
	if strings.TrimSpace(name) != name {
		return false
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
