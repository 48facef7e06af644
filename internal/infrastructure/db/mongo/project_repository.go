package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskboard/taskboard/internal/core/domain"
	"github.com/taskboard/taskboard/internal/core/ports"
)

const (
	collectionProjects       = "projects"
	collectionProjectMembers = "project_members"
)

// ProjectRepository persists projects and their membership rows. Memberships
// live in a separate collection with a unique (project_id, user_id) index, so
// a racing double-add collapses into the existing row.
type ProjectRepository struct {
	col     *mongo.Collection
	members *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{
		col:     db.Collection(collectionProjects),
		members: db.Collection(collectionProjectMembers),
	}
}

type mongoProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	OwnerID     string             `bson:"owner_id"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

type mongoMembership struct {
	ProjectID string `bson:"project_id"`
	UserID    string `bson:"user_id"`
	CreatedAt int64  `bson:"created_at"`
}

func (mp mongoProject) toDomain() *domain.Project {
	return &domain.Project{
		ID:          mp.ID.Hex(),
		Name:        mp.Name,
		Description: mp.Description,
		OwnerID:     mp.OwnerID,
		CreatedAt:   unixToTime(mp.CreatedAt),
		UpdatedAt:   unixToTime(mp.UpdatedAt),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProject{
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProject
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	return r.find(ctx, bson.M{})
}

// ListAccessible returns projects where userID is the owner or a member.
func (r *ProjectRepository) ListAccessible(ctx context.Context, userID string) ([]*domain.Project, error) {
	memberIDs, err := r.ListMemberProjectIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	oids := make([]primitive.ObjectID, 0, len(memberIDs))
	for _, id := range memberIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}

	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"_id": bson.M{"$in": oids}},
	}})
}

func (r *ProjectRepository) find(ctx context.Context, filter bson.M) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	var projects []*domain.Project
	for cur.Next(ctx) {
		var mp mongoProject
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		projects = append(projects, mp.toDomain())
	}
	return projects, cur.Err()
}

// Update applies only the non-nil fields of upd. OwnerID is never written.
func (r *ProjectRepository) Update(ctx context.Context, id string, upd ports.ProjectUpdate) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().Unix()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProjectNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// AddMember upserts the membership row; adding an existing member is a no-op.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"project_id": projectID, "user_id": userID}
	update := bson.M{"$setOnInsert": mongoMembership{
		ProjectID: projectID,
		UserID:    userID,
		CreatedAt: time.Now().Unix(),
	}}

	_, err := r.members.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// A racing upsert can still trip the unique index; the row exists, so
		// the add has succeeded.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.members.DeleteOne(ctx, bson.M{"project_id": projectID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (r *ProjectRepository) ListMemberIDs(ctx context.Context, projectID string) ([]string, error) {
	return r.memberField(ctx, bson.M{"project_id": projectID}, "user_id")
}

func (r *ProjectRepository) ListMemberProjectIDs(ctx context.Context, userID string) ([]string, error) {
	return r.memberField(ctx, bson.M{"user_id": userID}, "project_id")
}

func (r *ProjectRepository) memberField(ctx context.Context, filter bson.M, field string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.members.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var mm mongoMembership
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode membership: %w", err)
		}
		switch field {
		case "user_id":
			ids = append(ids, mm.UserID)
		case "project_id":
			ids = append(ids, mm.ProjectID)
		}
	}
	return ids, cur.Err()
}

func (r *ProjectRepository) DeleteMembersByProject(ctx context.Context, projectID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.members.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	return nil
}

// EnsureIndexes creates the owner lookup index and the unique membership pair.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = r.members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "project_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	return err
}
