package accountuser

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// DeleteUnverifiedUsers removes accounts that never verified their email
// and whose verification window closed before the given timestamp.
func (dbService *AccountUserDBService) DeleteUnverifiedUsers(ctx context.Context, expiredBefore int64) (int64, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{
		"emailVerified": false,
		"emailVerificationExpires": bson.M{
			"$gt": 0,
			"$lt": expiredBefore,
		},
	}

	res, err := dbService.collectionAccountUsers().DeleteMany(dbCtx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PruneExpiredRefreshTokens drops refresh token records that passed their
// own expiry from every account. Returns the number of modified accounts.
func (dbService *AccountUserDBService) PruneExpiredRefreshTokens(ctx context.Context, now int64) (int64, error) {
	dbCtx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionAccountUsers().UpdateMany(
		dbCtx,
		bson.M{"refreshTokens.expiresAt": bson.M{"$lt": now}},
		bson.M{"$pull": bson.M{"refreshTokens": bson.M{"expiresAt": bson.M{"$lt": now}}}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
