package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusconnect/campusconnect-api/internal/core/domain"
)

const collectionAccounts = "accounts"

// AccountRepository implements ports.AccountRepository on a MongoDB collection.
// Code consumption is a single UpdateOne whose filter repeats the code, purpose
// and expiry checks, so the server resolves concurrent attempts.
type AccountRepository struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewAccountRepository(db *mongo.Database, timeout time.Duration) *AccountRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &AccountRepository{col: db.Collection(collectionAccounts), timeout: timeout}
}

// pendingDoc is stored as one subdocument so code and expiry can only be set
// or removed together.
type pendingDoc struct {
	Code      string    `bson:"code"`
	Purpose   string    `bson:"purpose"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type accountDoc struct {
	ID           string      `bson:"_id"`
	Email        string      `bson:"email"`
	PasswordHash string      `bson:"password_hash"`
	Name         string      `bson:"name"`
	Phone        string      `bson:"phone"`
	WhatsApp     string      `bson:"whatsapp"`
	Role         string      `bson:"role"`
	AccessCode   string      `bson:"access_code"`
	IsVerified   bool        `bson:"is_verified"`
	Pending      *pendingDoc `bson:"pending,omitempty"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

func toDoc(a *domain.Account) accountDoc {
	d := accountDoc{
		ID:           a.ID,
		Email:        domain.NormalizeEmail(a.Email),
		PasswordHash: a.PasswordHash,
		Name:         a.Name,
		Phone:        a.Phone,
		WhatsApp:     a.WhatsApp,
		Role:         string(a.Role),
		AccessCode:   a.AccessCode,
		IsVerified:   a.IsVerified,
		CreatedAt:    a.CreatedAt.UTC(),
		UpdatedAt:    a.UpdatedAt.UTC(),
	}
	if a.Pending != nil {
		d.Pending = &pendingDoc{
			Code:      a.Pending.Code,
			Purpose:   string(a.Pending.Purpose),
			ExpiresAt: a.Pending.ExpiresAt.UTC(),
		}
	}
	return d
}

func (d accountDoc) toDomain() *domain.Account {
	a := &domain.Account{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Phone:        d.Phone,
		WhatsApp:     d.WhatsApp,
		Role:         domain.Role(d.Role),
		AccessCode:   d.AccessCode,
		IsVerified:   d.IsVerified,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if d.Pending != nil {
		a.Pending = &domain.PendingCode{
			Code:      d.Pending.Code,
			Purpose:   domain.PendingPurpose(d.Pending.Purpose),
			ExpiresAt: d.Pending.ExpiresAt.UTC(),
		}
	}
	return a
}

// Create inserts a new account document. The unique email index turns a
// duplicate into domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, toDoc(a)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": domain.NormalizeEmail(email)})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var d accountDoc
	if err := r.col.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) SetPendingCode(ctx context.Context, id string, p domain.PendingCode, onlyUnverified bool, now time.Time) error {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	filter := bson.M{"_id": id}
	if onlyUnverified {
		filter["is_verified"] = false
	}
	update := bson.M{"$set": bson.M{
		"pending": pendingDoc{
			Code:      p.Code,
			Purpose:   string(p.Purpose),
			ExpiresAt: p.ExpiresAt.UTC(),
		},
		"updated_at": now.UTC(),
	}}

	res, err := r.col.UpdateOne(opCtx, filter, update)
	if err != nil {
		return fmt.Errorf("set pending code: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	// Nothing matched: either the account is gone or it is already verified.
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return domain.ErrAlreadyVerified
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id, code string, now time.Time) (bool, error) {
	filter := pendingFilter(id, domain.PurposeVerify, code, now)
	filter["is_verified"] = false
	update := bson.M{
		"$set":   bson.M{"is_verified": true, "updated_at": now.UTC()},
		"$unset": bson.M{"pending": ""},
	}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *AccountRepository) ResetPassword(ctx context.Context, id, code, passwordHash string, now time.Time) (bool, error) {
	update := bson.M{
		"$set":   bson.M{"password_hash": passwordHash, "updated_at": now.UTC()},
		"$unset": bson.M{"pending": ""},
	}
	return r.conditionalUpdate(ctx, pendingFilter(id, domain.PurposeReset, code, now), update)
}

func (r *AccountRepository) conditionalUpdate(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func pendingFilter(id string, purpose domain.PendingPurpose, code string, now time.Time) bson.M {
	return bson.M{
		"_id":                id,
		"pending.code":       code,
		"pending.purpose":    string(purpose),
		"pending.expires_at": bson.M{"$gte": now.UTC()},
	}
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch, now time.Time) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	set := bson.M{"updated_at": now.UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.WhatsApp != nil {
		set["whatsapp"] = *patch.WhatsApp
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d accountDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return d.toDomain(), nil
}

// EnsureIndexes creates the indexes the account queries rely on.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_verified", Value: 1}}},
		{Keys: bson.D{{Key: "pending.expires_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
