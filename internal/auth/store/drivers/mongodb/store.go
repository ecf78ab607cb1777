// Package mongodb is the MongoDB store driver. Transactions need the server to
// run as a replica set.
package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNoTransactions is returned by NewStore when the server is a standalone
// mongod.
var ErrNoTransactions = errors.New("mongodb: transactions require a replica set or sharded cluster")

// collection names
const (
	collectionAccounts       = "accounts"
	collectionSignInAttempts = "signInAttempts"
	collectionOTPs           = "otps"
	collectionAuthTokens     = "authTokens"
)

// Config mirrors the knobs exposed through the environment.
type Config struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	IdleConnTimeout time.Duration
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	sess   mongo.Session // nil outside a transaction
}

func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	connCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.IdleConnTimeout > 0 {
		opts.SetMaxConnIdleTime(cfg.IdleConnTimeout)
	}

	client, err := mongo.Connect(connCtx, opts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	var hello bson.M
	if err := client.Database("admin").RunCommand(connCtx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	if !supportsTransactions(hello) {
		_ = client.Disconnect(context.Background())
		return nil, ErrNoTransactions
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// supportsTransactions reads a hello reply. Replica set members report
// setName and mongos reports msg "isdbgrid".
func supportsTransactions(hello bson.M) bool {
	if name, _ := hello["setName"].(string); name != "" {
		return true
	}
	msg, _ := hello["msg"].(string)
	return msg == "isdbgrid"
}

func (s *Store) Close() error {
	if s.sess != nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.sess != nil {
		return nil
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// ApplyMigrations creates the indexes the repositories rely on.
func (s *Store) ApplyMigrations() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		collectionAccounts: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collectionSignInAttempts: {
			{Keys: bson.D{{Key: "accountID", Value: 1}}},
		},
		collectionOTPs: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "purpose", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}},
		},
		collectionAuthTokens: {
			{Keys: bson.D{{Key: "refreshFingerprint", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "accountID", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

// Tx starts a multi-document transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if s.sess != nil {
		return nil, errNestedTx
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, err
	}

	return &txStore{Store: &Store{client: s.client, db: s.db, sess: sess}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Accounts() store.Accounts             { return &accountsRepo{s: s} }
func (s *Store) SignInAttempts() store.SignInAttempts { return &attemptsRepo{s: s} }
func (s *Store) OTPs() store.OTPs                     { return &otpsRepo{s: s} }
func (s *Store) AuthTokens() store.AuthTokens         { return &authTokensRepo{s: s} }

// bind attaches the transaction session, if any, to ctx.
func (s *Store) bind(ctx context.Context) context.Context {
	if s.sess == nil {
		return ctx
	}
	return mongo.NewSessionContext(ctx, s.sess)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

var errNestedTx = errors.New("mongodb: nested transactions are not supported")

type txStore struct {
	*Store
	done bool
}

func (t *txStore) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(context.Background())
	return t.sess.CommitTransaction(context.Background())
}

func (t *txStore) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.sess.EndSession(context.Background())
	return t.sess.AbortTransaction(context.Background())
}

func (t *txStore) ApplyMigrations() error { return nil } // indexes are created before any tx

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrAlreadyExists
	default:
		return err
	}
}
