package mongodb

import (
	"context"
	"errors"

	"civicdesk/internal/dao/fields"
	"civicdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func NewUsersDAO(db *mongo.Database, logger *zap.Logger) *UsersDAO {
	return &UsersDAO{
		collection: db.Collection(CollectionUsers),
		logger:     logger.Named("UsersDAO"),
	}
}

// UsersDAO reads the user directory owned by the authentication service.
type UsersDAO struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func (d *UsersDAO) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var res models.User
	opts := options.FindOne().SetProjection(bson.M{fields.FieldName: 1, fields.FieldEmail: 1, fields.FieldRole: 1})
	err := d.collection.FindOne(ctx, bson.M{fields.FieldObjectId: id}, opts).Decode(&res)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			d.logger.Error("GetUserByID: FindOne failed", zap.Error(err), zap.Stringer("userID", id))
		}
		return nil, err
	}
	return &res, nil
}
