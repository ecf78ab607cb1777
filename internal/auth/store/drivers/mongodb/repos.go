package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var errEmptyFilter = errors.New("mongodb: empty account filter")

type accountsRepo struct{ s *Store }

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	_, err := r.s.collection(collectionAccounts).InsertOne(r.s.bind(ctx), toAccountDoc(a))
	return mapErr(err)
}

func (r *accountsRepo) FindAccount(ctx context.Context, f store.AccountFilter) (domain.Account, error) {
	filter, err := accountFilter(f)
	if err != nil {
		return domain.Account{}, err
	}

	var doc accountDoc
	if err := r.s.collection(collectionAccounts).FindOne(r.s.bind(ctx), filter).Decode(&doc); err != nil {
		return domain.Account{}, mapErr(err)
	}
	return doc.domain(), nil
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	doc := toAccountDoc(a)
	update := bson.M{"$set": bson.M{
		"firstName":          doc.FirstName,
		"lastName":           doc.LastName,
		"username":           doc.Username,
		"email":              doc.Email,
		"countryPhoneCode":   doc.CountryPhoneCode,
		"phone":              doc.Phone,
		"profileImage":       doc.ProfileImage,
		"role":               doc.Role,
		"clearanceLevel":     doc.ClearanceLevel,
		"passwordHash":       doc.PasswordHash,
		"status":             doc.Status,
		"isActive":           doc.IsActive,
		"failedSignIns":      doc.FailedSignIns,
		"suspensionDuration": doc.SuspensionDuration,
		"suspensionTimeUnit": doc.SuspensionTimeUnit,
		"suspendedAt":        doc.SuspendedAt,
		"lastLogin":          doc.LastLogin,
		"updatedAt":          time.Now().UTC(),
	}}

	var out accountDoc
	err := r.s.collection(collectionAccounts).FindOneAndUpdate(
		r.s.bind(ctx),
		bson.M{"_id": a.ID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return domain.Account{}, mapErr(err)
	}
	return out.domain(), nil
}

func (r *accountsRepo) UpdateLastLogin(ctx context.Context, accountID string, at time.Time) error {
	res, err := r.s.collection(collectionAccounts).UpdateByID(r.s.bind(ctx), accountID, bson.M{
		"$set": bson.M{"lastLogin": at.UTC(), "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) CountAccounts(ctx context.Context, f store.AccountFilter) (int, error) {
	filter, err := accountFilter(f)
	if err != nil {
		return 0, err
	}
	n, err := r.s.collection(collectionAccounts).CountDocuments(r.s.bind(ctx), filter)
	return int(n), mapErr(err)
}

func accountFilter(f store.AccountFilter) (bson.M, error) {
	filter := bson.M{}
	if f.ID != "" {
		filter["_id"] = f.ID
	}
	if f.Username != "" {
		filter["username"] = f.Username
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if len(filter) == 0 {
		return nil, errEmptyFilter
	}
	return filter, nil
}

type attemptsRepo struct{ s *Store }

func (r *attemptsRepo) CreateSignInAttempt(ctx context.Context, a domain.SignInAttempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := r.s.collection(collectionSignInAttempts).InsertOne(r.s.bind(ctx), attemptDoc{
		ID:        a.ID,
		AccountID: a.AccountID,
		Username:  a.Username,
		Password:  a.Password,
		IPAddress: a.IPAddress,
		CreatedAt: a.CreatedAt.UTC(),
	})
	return mapErr(err)
}

func (r *attemptsRepo) CountSignInAttempts(ctx context.Context, accountID string) (int, error) {
	n, err := r.s.collection(collectionSignInAttempts).CountDocuments(r.s.bind(ctx), bson.M{"accountID": accountID})
	return int(n), mapErr(err)
}

func (r *attemptsRepo) DeleteSignInAttempts(ctx context.Context, accountID string) error {
	_, err := r.s.collection(collectionSignInAttempts).DeleteMany(r.s.bind(ctx), bson.M{"accountID": accountID})
	return mapErr(err)
}

type otpsRepo struct{ s *Store }

func (r *otpsRepo) CreateOTP(ctx context.Context, o domain.OneTimePasscode) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = o.ExpiresAtFrom()
	}
	_, err := r.s.collection(collectionOTPs).InsertOne(r.s.bind(ctx), otpDoc{
		ID:        o.ID,
		AccountID: o.AccountID,
		Email:     o.Email,
		Purpose:   string(o.Purpose),
		CodeHash:  o.CodeHash,
		Duration:  o.Duration,
		TimeUnit:  string(o.TimeUnit),
		CreatedAt: o.CreatedAt.UTC(),
		ExpiresAt: o.ExpiresAt.UTC(),
	})
	return mapErr(err)
}

func (r *otpsRepo) FindOTP(ctx context.Context, email string, purpose domain.OTPPurpose) (domain.OneTimePasscode, error) {
	var doc otpDoc
	err := r.s.collection(collectionOTPs).FindOne(
		r.s.bind(ctx),
		bson.M{"email": email, "purpose": string(purpose)},
	).Decode(&doc)
	if err != nil {
		return domain.OneTimePasscode{}, mapErr(err)
	}
	return doc.domain(), nil
}

func (r *otpsRepo) DeleteOTP(ctx context.Context, id string) error {
	res, err := r.s.collection(collectionOTPs).DeleteOne(r.s.bind(ctx), bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *otpsRepo) DeleteOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	_, err := r.s.collection(collectionOTPs).DeleteMany(r.s.bind(ctx), bson.M{"email": email, "purpose": string(purpose)})
	return mapErr(err)
}

func (r *otpsRepo) CountOTPs(ctx context.Context, email string, purpose domain.OTPPurpose) (int, error) {
	n, err := r.s.collection(collectionOTPs).CountDocuments(r.s.bind(ctx), bson.M{"email": email, "purpose": string(purpose)})
	return int(n), mapErr(err)
}

func (r *otpsRepo) DeleteExpiredOTPs(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.s.collection(collectionOTPs).DeleteMany(r.s.bind(ctx), bson.M{"expiresAt": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, mapErr(err)
	}
	return res.DeletedCount, nil
}

type authTokensRepo struct{ s *Store }

func (r *authTokensRepo) CreateAuthTokenPair(ctx context.Context, p domain.AuthTokenPair) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	_, err := r.s.collection(collectionAuthTokens).InsertOne(r.s.bind(ctx), authTokenDoc{
		ID:                 p.ID,
		AccountID:          p.AccountID,
		AccessFingerprint:  p.AccessFingerprint,
		RefreshFingerprint: p.RefreshFingerprint,
		CreatedAt:          p.CreatedAt.UTC(),
		UpdatedAt:          p.UpdatedAt.UTC(),
	})
	return mapErr(err)
}

func (r *authTokensRepo) FindAuthTokenPair(ctx context.Context, refreshFingerprint, accountID string) (domain.AuthTokenPair, error) {
	var doc authTokenDoc
	err := r.s.collection(collectionAuthTokens).FindOne(
		r.s.bind(ctx),
		bson.M{"refreshFingerprint": refreshFingerprint, "accountID": accountID},
	).Decode(&doc)
	if err != nil {
		return domain.AuthTokenPair{}, mapErr(err)
	}
	return doc.domain(), nil
}

func (r *authTokensRepo) UpdateAccessFingerprint(ctx context.Context, id, accessFingerprint string) error {
	res, err := r.s.collection(collectionAuthTokens).UpdateByID(r.s.bind(ctx), id, bson.M{
		"$set": bson.M{"accessFingerprint": accessFingerprint, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *authTokensRepo) DeleteAuthTokenPair(ctx context.Context, id string) error {
	res, err := r.s.collection(collectionAuthTokens).DeleteOne(r.s.bind(ctx), bson.M{"_id": id})
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *authTokensRepo) DeleteAuthTokenPairsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.s.collection(collectionAuthTokens).DeleteMany(r.s.bind(ctx), bson.M{"createdAt": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, mapErr(err)
	}
	return res.DeletedCount, nil
}
