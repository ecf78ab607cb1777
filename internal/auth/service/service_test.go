package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatehouse/pkg/cryptox"
	"github.com/aussiebroadwan/gatehouse/pkg/idx"
	"github.com/aussiebroadwan/gatehouse/pkg/jwtx"
	"github.com/aussiebroadwan/gatehouse/pkg/mailx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "0123456789abcdef0123456789abcdef"
	testIssuer   = "https://auth.test"
	testPassword = "correct horse battery"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("test-pepper")
	os.Exit(m.Run())
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type outbox struct {
	mu   sync.Mutex
	sent []mailx.Message
}

func (o *outbox) Send(_ context.Context, msg mailx.Message) error {
	o.mu.Lock()
	o.sent = append(o.sent, msg)
	o.mu.Unlock()
	return nil
}

func (o *outbox) Close() error { return nil }

type testEnv struct {
	store  store.Store
	clock  *clock
	policy *Policy
	mail   *outbox
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	policy := DefaultPolicy()
	require.NoError(t, policy.Validate())

	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	signer, err := jwtx.NewSignerHS256("test", []byte(testSecret))
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256([]byte(testSecret), jwtx.VerifyOptions{Issuer: testIssuer})

	mail := &outbox{}
	env := &testEnv{store: s, clock: clk, policy: policy, mail: mail}
	env.auth = &AuthService{
		Store:      s,
		Attempts:   &AttemptTracker{Store: s},
		Suspension: &SuspensionService{Store: s, Policy: policy, Now: clk.Now},
		OTPs:       &OTPService{Store: s, Policy: policy, Now: clk.Now},
		Tokens: &TokenService{
			Store:      s,
			Signer:     signer,
			Verifier:   verifier,
			Issuer:     testIssuer,
			AccessTTL:  jwtx.DefaultAccessTokenTTL,
			RefreshTTL: jwtx.DefaultRefreshTokenTTL,
		},
		Mailer: mail,
	}
	return env
}

// seedAccount inserts an active, verified account with testPassword.
func (e *testEnv) seedAccount(t *testing.T, username string) domain.Account {
	t.Helper()

	hash, err := cryptox.HashPassword(testPassword)
	require.NoError(t, err)

	acc := domain.Account{
		ID:             idx.NewString(),
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Username:       username,
		Email:          username + "@example.com",
		Role:           domain.RoleUser,
		ClearanceLevel: 1,
		PasswordHash:   hash,
		Status:         domain.StatusActive,
		IsActive:       true,
	}
	require.NoError(t, e.store.Accounts().CreateAccount(context.Background(), acc))
	return acc
}

func (e *testEnv) account(t *testing.T, id string) domain.Account {
	t.Helper()
	acc, err := e.store.Accounts().FindAccount(context.Background(), store.AccountFilter{ID: id})
	require.NoError(t, err)
	return acc
}

func (e *testEnv) attempt(username, password string) (domain.Account, error) {
	return e.auth.Attempt(context.Background(), AttemptInput{Username: username, Password: password, IP: "203.0.113.7"})
}

func (e *testEnv) failTimes(t *testing.T, username string, n int) error {
	t.Helper()
	var err error
	for range n {
		_, err = e.attempt(username, "wrong password")
		require.Error(t, err)
	}
	return err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
