package accountuser

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	usermanagement "github.com/Tolpa-999/PerfumBackend/pkg/user-management"
	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

var _ usermanagement.UserStore = (*AccountUserDBService)(nil)

func (dbService *AccountUserDBService) GetUserByID(ctx context.Context, id string) (userTypes.User, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return userTypes.User{}, usermanagement.ErrNotFound
	}

	var user userTypes.User
	err = dbService.collectionAccountUsers().FindOne(dbCtx, bson.M{"_id": _id}).Decode(&user)
	return user, mapStoreError(err)
}

func (dbService *AccountUserDBService) GetUserByEmail(ctx context.Context, email string) (userTypes.User, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	var user userTypes.User
	err := dbService.collectionAccountUsers().FindOne(dbCtx, bson.M{"email": email}).Decode(&user)
	return user, mapStoreError(err)
}

func (dbService *AccountUserDBService) GetUserByUsernameOrEmail(ctx context.Context, username string, email string) (userTypes.User, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}}

	var user userTypes.User
	err := dbService.collectionAccountUsers().FindOne(dbCtx, filter).Decode(&user)
	return user, mapStoreError(err)
}

func (dbService *AccountUserDBService) GetUserByValidResetToken(ctx context.Context, token string, now time.Time) (userTypes.User, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"resetPasswordToken":   token,
		"resetPasswordExpires": bson.M{"$gt": now.Unix()},
	}

	var user userTypes.User
	err := dbService.collectionAccountUsers().FindOne(dbCtx, filter).Decode(&user)
	return user, mapStoreError(err)
}

func (dbService *AccountUserDBService) CreateUser(ctx context.Context, user userTypes.User) (string, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionAccountUsers().InsertOne(dbCtx, user)
	if err != nil {
		// unique index on username and email closes the check-then-insert race
		if mongo.IsDuplicateKeyError(err) {
			return "", usermanagement.ErrAlreadyExists
		}
		return "", err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return id.Hex(), nil
}

func (dbService *AccountUserDBService) ReissueUnverifiedCredentials(ctx context.Context, id string, passwordHash string, verificationExpires int64) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	// conditional on the account still being unverified
	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id, "emailVerified": false},
		bson.M{"$set": bson.M{
			"password":                 passwordHash,
			"emailVerificationExpires": verificationExpires,
			"timestamps.updatedAt":     time.Now().Unix(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) MarkEmailVerified(ctx context.Context, id string) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{
			"emailVerified":        true,
			"timestamps.updatedAt": time.Now().Unix(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

// RecordFailedLoginAttempt increments the failure counter through a
// find-and-modify, then engages the lock with a second update that is
// conditional on the counter still being at the threshold. Concurrent
// failures cannot push the stored counter past the threshold without one
// of them engaging the lock.
func (dbService *AccountUserDBService) RecordFailedLoginAttempt(ctx context.Context, id string, maxAttempts int64, lockUntil int64) (bool, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, usermanagement.ErrNotFound
	}

	var updated userTypes.User
	err = dbService.collectionAccountUsers().FindOneAndUpdate(
		dbCtx,
		bson.M{
			"_id":       _id,
			"lockUntil": bson.M{"$not": bson.M{"$gt": time.Now().Unix()}},
		},
		bson.M{"$inc": bson.M{"loginAttempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return false, mapStoreError(err)
	}

	if updated.LoginAttempts < maxAttempts {
		return false, nil
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id, "loginAttempts": bson.M{"$gte": maxAttempts}},
		bson.M{
			"$set":   bson.M{"lockUntil": lockUntil},
			"$unset": bson.M{"loginAttempts": ""},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (dbService *AccountUserDBService) ClearLoginLockout(ctx context.Context, id string, lastLogin int64) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id},
		bson.M{
			"$unset": bson.M{"loginAttempts": "", "lockUntil": ""},
			"$set":   bson.M{"timestamps.lastLogin": lastLogin},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) AddRefreshToken(ctx context.Context, id string, rt userTypes.RefreshToken) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id},
		bson.M{"$push": bson.M{"refreshTokens": rt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) RotateRefreshToken(ctx context.Context, id string, oldToken string, rt userTypes.RefreshToken) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	// positional replace, conditional on the old token still being listed
	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id, "refreshTokens.token": oldToken},
		bson.M{"$set": bson.M{"refreshTokens.$": rt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) ClearRefreshTokens(ctx context.Context, id string) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{"refreshTokens": bson.A{}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) SetResetToken(ctx context.Context, id string, token string, expires int64) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{"_id": _id},
		bson.M{"$set": bson.M{
			"resetPasswordToken":   token,
			"resetPasswordExpires": expires,
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func (dbService *AccountUserDBService) ConsumePasswordReset(ctx context.Context, id string, token string, passwordHash string, now int64) error {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usermanagement.ErrNotFound
	}

	// single conditional write: set the new password, drop the token and
	// revoke every session, or match nothing if the token was already
	// consumed or expired
	res, err := dbService.collectionAccountUsers().UpdateOne(
		dbCtx,
		bson.M{
			"_id":                  _id,
			"resetPasswordToken":   token,
			"resetPasswordExpires": bson.M{"$gt": now},
		},
		bson.M{
			"$set": bson.M{
				"password":                      passwordHash,
				"refreshTokens":                 bson.A{},
				"timestamps.lastPasswordChange": now,
				"timestamps.updatedAt":          now,
			},
			"$unset": bson.M{
				"resetPasswordToken":   "",
				"resetPasswordExpires": "",
			},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usermanagement.ErrNotFound
	}
	return nil
}

func mapStoreError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return usermanagement.ErrNotFound
	}
	return err
}
