package mongodb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
)

// startMongo runs a single node replica set so transactions are available.
func startMongo(t *testing.T) string {
	t.Helper()
	return runMongo(t, true)
}

func runMongo(t *testing.T, replicaSet bool) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}
	ctx := context.Background()

	cmd := []string{"--bind_ip_all"}
	if replicaSet {
		cmd = append(cmd, "--replSet", "rs0")
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			Cmd:          cmd,
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	if replicaSet {
		_, _, err = container.Exec(ctx, []string{
			"mongosh", "--quiet", "--eval",
			"rs.initiate({_id: 'rs0', members: [{_id: 0, host: 'localhost:27017'}]})",
		})
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, out, err := container.Exec(ctx, []string{"mongosh", "--quiet", "--eval", "db.hello().isWritablePrimary"})
			if err != nil {
				return false
			}
			b, _ := io.ReadAll(out)
			return strings.Contains(string(b), "true")
		}, 30*time.Second, 500*time.Millisecond)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port())
}

func TestSupportsTransactions(t *testing.T) {
	tests := []struct {
		name  string
		hello bson.M
		want  bool
	}{
		{"standalone", bson.M{"isWritablePrimary": true, "maxWireVersion": int32(21)}, false},
		{"replica set member", bson.M{"isWritablePrimary": true, "setName": "rs0"}, true},
		{"empty set name", bson.M{"setName": ""}, false},
		{"mongos", bson.M{"msg": "isdbgrid"}, true},
		{"unexpected types", bson.M{"setName": 1, "msg": true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, supportsTransactions(tt.hello))
		})
	}
}

func TestNewStoreRejectsStandalone(t *testing.T) {
	uri := runMongo(t, false)

	_, err := NewStore(context.Background(), Config{URI: uri, Database: "gatehouse_test", Timeout: 10 * time.Second})
	require.ErrorIs(t, err, ErrNoTransactions)
}

func TestMongoStore(t *testing.T) {
	uri := startMongo(t)
	ctx := context.Background()

	s, err := NewStore(ctx, Config{URI: uri, Database: "gatehouse_test", Timeout: 10 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())

	account := domain.Account{
		ID: "acc-1", FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "ada@example.com",
		PasswordHash: "hash", Role: domain.RoleUser, Status: domain.StatusInactive,
	}
	require.NoError(t, s.Accounts().CreateAccount(ctx, account))

	t.Run("duplicate email", func(t *testing.T) {
		dup := account
		dup.ID = "acc-2"
		dup.Username = "ada2"
		require.ErrorIs(t, s.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("update returns stored document", func(t *testing.T) {
		failed := 3
		account.Status = domain.StatusSuspended
		account.FailedSignIns = &failed

		got, err := s.Accounts().UpdateAccount(ctx, account)
		require.NoError(t, err)
		require.Equal(t, domain.StatusSuspended, got.Status)
		require.Equal(t, 3, got.FailedSignInCount())
	})

	t.Run("attempts", func(t *testing.T) {
		for _, id := range []string{"a1", "a2"} {
			require.NoError(t, s.SignInAttempts().CreateSignInAttempt(ctx, domain.SignInAttempt{
				ID: id, AccountID: "acc-1", Username: "ada", Password: "bad",
			}))
		}
		n, err := s.SignInAttempts().CountSignInAttempts(ctx, "acc-1")
		require.NoError(t, err)
		require.Equal(t, 2, n)

		require.NoError(t, s.SignInAttempts().DeleteSignInAttempts(ctx, "acc-1"))
		n, err = s.SignInAttempts().CountSignInAttempts(ctx, "acc-1")
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("transaction rollback", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.OTPs().CreateOTP(ctx, domain.OneTimePasscode{
				ID: "otp-1", AccountID: "acc-1", Email: "ada@example.com", Purpose: domain.PurposeLogin,
				CodeHash: "h", Duration: 10, TimeUnit: domain.UnitMinutes,
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = s.OTPs().FindOTP(ctx, "ada@example.com", domain.PurposeLogin)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("token pairs", func(t *testing.T) {
		require.NoError(t, s.AuthTokens().CreateAuthTokenPair(ctx, domain.AuthTokenPair{
			ID: "pair-1", AccountID: "acc-1", AccessFingerprint: "a1", RefreshFingerprint: "r1",
		}))
		require.NoError(t, s.AuthTokens().UpdateAccessFingerprint(ctx, "pair-1", "a2"))

		pair, err := s.AuthTokens().FindAuthTokenPair(ctx, "r1", "acc-1")
		require.NoError(t, err)
		require.Equal(t, "a2", pair.AccessFingerprint)
	})
}
