package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/moviestream/identity-system/internal/core/domain"
)

const roleCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(roleCollection)}
}

type mongoRole struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Level          int                `bson:"level"`
	Name           string             `bson:"name"`
	Description    string             `bson:"description,omitempty"`
	MaxContentYear int                `bson:"max_content_year"`
}

// EnsureIndexes creates the unique level index backing the total order
// of the ladder.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "level", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create role index: %w", err)
	}
	return nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

func (r *RoleRepository) FindByLevel(ctx context.Context, level int) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"level": level}, nil)
}

// FindLowest returns the role with the smallest level, the default
// role assigned at sign-up.
func (r *RoleRepository) FindLowest(ctx context.Context) (*domain.Role, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "level", Value: 1}})
	return r.findOne(ctx, bson.M{}, opts)
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	doc := mongoRole{
		Level:          role.Level,
		Name:           role.Name,
		Description:    role.Description,
		MaxContentYear: role.MaxContentYear,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleExists
		}
		return nil, storageErr("insert role", err)
	}

	created := *role
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	oid, err := primitive.ObjectIDFromHex(role.ID)
	if err != nil {
		return domain.ErrRoleNotFound
	}

	update := bson.M{"$set": bson.M{
		"name":             role.Name,
		"description":      role.Description,
		"max_content_year": role.MaxContentYear,
	}}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return storageErr("update role", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRoleNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return storageErr("delete role", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Role, error) {
	var mr mongoRole

	res := r.coll.FindOne(ctx, filter)
	if opts != nil {
		res = r.coll.FindOne(ctx, filter, opts)
	}
	if err := res.Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, storageErr("find role", err)
	}

	return &domain.Role{
		ID:             mr.ID.Hex(),
		Level:          mr.Level,
		Name:           mr.Name,
		Description:    mr.Description,
		MaxContentYear: mr.MaxContentYear,
	}, nil
}
