package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keirastanley/kellaspace-backend/internal/domain"
	"github.com/keirastanley/kellaspace-backend/internal/metrics"
)

// UserRepository stores one document per user; recommendations and lists
// live as embedded arrays inside the user document, so every mutation here
// is a single-document operation.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(client *mongo.Client, dbName, collectionName string) *UserRepository {
	return &UserRepository{collection: client.Database(dbName).Collection(collectionName)}
}

func Connect(ctx context.Context, uri string, extra ...*options.ClientOptions) (*mongo.Client, error) {
	opts := append([]*options.ClientOptions{options.Client().ApplyURI(uri)}, extra...)
	client, err := mongo.Connect(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	if r == nil || r.collection == nil {
		return nil
	}
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sub", Value: 1}}},
		{Keys: bson.D{{Key: "recommendations.id", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, models)
	return err
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid object id", domain.ErrInvalidID, id)
	}
	return oid, nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := r.get(ctx, id)
	metrics.StoreOperationsTotal.WithLabelValues("get_user", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) get(ctx context.Context, id string) (domain.User, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return domain.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetBySub(ctx context.Context, sub string) (domain.User, error) {
	user, err := r.findOne(ctx, bson.M{"sub": sub})
	metrics.StoreOperationsTotal.WithLabelValues("get_user_by_sub", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (domain.User, error) {
	var user domain.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Create validates and inserts the user, then re-reads the stored document
// so the caller sees exactly what was persisted, not the driver's echo.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.create(ctx, user)
	metrics.StoreOperationsTotal.WithLabelValues("create_user", metrics.StatusLabel(err)).Inc()
	return created, err
}

func (r *UserRepository) create(ctx context.Context, user domain.User) (domain.User, error) {
	if err := user.Validate(); err != nil {
		return domain.User{}, err
	}
	if user.Recommendations == nil {
		user.Recommendations = []domain.Recommendation{}
	}
	if user.Lists == nil {
		user.Lists = []domain.List{}
	}

	res, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.User{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) AddRecommendation(ctx context.Context, userID string, rec domain.Recommendation) (domain.User, error) {
	user, err := r.push(ctx, userID, "recommendations", rec, rec.Validate())
	metrics.StoreOperationsTotal.WithLabelValues("add_recommendation", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) AddList(ctx context.Context, userID string, list domain.List) (domain.User, error) {
	user, err := r.push(ctx, userID, "lists", list, list.Validate())
	metrics.StoreOperationsTotal.WithLabelValues("add_list", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) push(ctx context.Context, userID, field string, element any, validationErr error) (domain.User, error) {
	if validationErr != nil {
		return domain.User{}, validationErr
	}
	oid, err := parseObjectID(userID)
	if err != nil {
		return domain.User{}, err
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$push": bson.M{field: element}},
	)
	if err != nil {
		return domain.User{}, err
	}
	if res.MatchedCount == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// EditRecommendation merges the provided patch fields onto the single
// embedded element whose id matches, leaving sibling elements untouched.
func (r *UserRepository) EditRecommendation(ctx context.Context, userID, recommendationID string, patch domain.RecommendationPatch) (domain.User, error) {
	user, err := r.editRecommendation(ctx, userID, recommendationID, patch)
	metrics.StoreOperationsTotal.WithLabelValues("edit_recommendation", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) editRecommendation(ctx context.Context, userID, recommendationID string, patch domain.RecommendationPatch) (domain.User, error) {
	if err := patch.Validate(); err != nil {
		return domain.User{}, err
	}
	oid, err := parseObjectID(userID)
	if err != nil {
		return domain.User{}, err
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "recommendations.id": recommendationID},
		bson.M{"$set": patchSetDoc(patch)},
	)
	if err != nil {
		return domain.User{}, err
	}
	if res.MatchedCount == 0 {
		// The combined filter cannot tell a missing user from a missing
		// element, so re-check the user to report the right error.
		if _, err := r.findOne(ctx, bson.M{"_id": oid}); err != nil {
			return domain.User{}, err
		}
		return domain.User{}, domain.ErrRecommendationNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// patchSetDoc maps provided patch fields onto positional-operator paths so
// only the matched array element is touched.
func patchSetDoc(patch domain.RecommendationPatch) bson.M {
	set := bson.M{}
	setField := func(name string, value any) {
		set["recommendations.$."+name] = value
	}
	if patch.Title != nil {
		setField("title", *patch.Title)
	}
	if patch.AddedBy != nil {
		setField("addedBy", *patch.AddedBy)
	}
	if patch.MediaType != nil {
		setField("mediaType", *patch.MediaType)
	}
	if patch.DateAdded != nil {
		setField("dateAdded", *patch.DateAdded)
	}
	if patch.Link != nil {
		setField("link", *patch.Link)
	}
	if patch.Description != nil {
		setField("description", *patch.Description)
	}
	if patch.Completed != nil {
		setField("completed", *patch.Completed)
	}
	if patch.Favourite != nil {
		setField("favourite", *patch.Favourite)
	}
	if patch.Message != nil {
		setField("message", *patch.Message)
	}
	if patch.Tags != nil {
		setField("tags", *patch.Tags)
	}
	if patch.Image != nil {
		setField("image", *patch.Image)
	}
	return set
}

func (r *UserRepository) DeleteRecommendation(ctx context.Context, userID, recommendationID string) (domain.User, error) {
	user, err := r.deleteRecommendation(ctx, userID, recommendationID)
	metrics.StoreOperationsTotal.WithLabelValues("delete_recommendation", metrics.StatusLabel(err)).Inc()
	return user, err
}

func (r *UserRepository) deleteRecommendation(ctx context.Context, userID, recommendationID string) (domain.User, error) {
	oid, err := parseObjectID(userID)
	if err != nil {
		return domain.User{}, err
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"recommendations": bson.M{"id": recommendationID}}},
	)
	if err != nil {
		return domain.User{}, err
	}
	if res.MatchedCount == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	if res.ModifiedCount == 0 {
		return domain.User{}, domain.ErrRecommendationNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	err := r.delete(ctx, userID)
	metrics.StoreOperationsTotal.WithLabelValues("delete_user", metrics.StatusLabel(err)).Inc()
	return err
}

func (r *UserRepository) delete(ctx context.Context, userID string) error {
	oid, err := parseObjectID(userID)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
