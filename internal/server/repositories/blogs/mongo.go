package blogs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docblog/internal/common"
	"github.com/dmitrijs2005/docblog/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// Collection is the MongoDB collection holding blogs.
	Collection = "blogs"

	usersCollection = "users"
)

type imageDoc struct {
	Data        []byte `bson:"data,omitempty"`
	ContentType string `bson:"contentType"`
	Filename    string `bson:"filename"`
	StorageKey  string `bson:"storageKey,omitempty"`
}

type blogDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	GoogleDriveLink string             `bson:"googleDriveLink"`
	Image           *imageDoc          `bson:"image,omitempty"`
	Author          primitive.ObjectID `bson:"author"`
	Featured        bool               `bson:"featured"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

type authorDoc struct {
	Name string `bson:"name"`
}

// joinedDoc is a blog with its author attached by $lookup. The codec skips
// embedded fields of unexported types, so the blog is a named inline field.
type joinedDoc struct {
	Blog    blogDoc     `bson:",inline"`
	Authors []authorDoc `bson:"authors"`
}

func (j *joinedDoc) model() *models.Blog {
	d := &j.Blog
	b := &models.Blog{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		GoogleDriveLink: d.GoogleDriveLink,
		AuthorID:        d.Author.Hex(),
		Featured:        d.Featured,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Image != nil {
		b.Image = &models.Image{
			Data:        d.Image.Data,
			ContentType: d.Image.ContentType,
			Filename:    d.Image.Filename,
			StorageKey:  d.Image.StorageKey,
		}
	}
	if len(j.Authors) > 0 {
		b.AuthorName = j.Authors[0].Name
	}
	return b
}

func toImageDoc(img *models.Image) *imageDoc {
	if img == nil {
		return nil
	}
	d := &imageDoc{ContentType: img.ContentType, Filename: img.Filename, StorageKey: img.StorageKey}
	if img.StorageKey == "" {
		d.Data = img.Data
	}
	return d
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the index backing the newest-first listing.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("blogs_created_at_idx"),
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	author, err := primitive.ObjectIDFromHex(blog.AuthorID)
	if err != nil {
		return nil, common.ErrInvalidID
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := blogDoc{
		ID:              primitive.NewObjectID(),
		Title:           blog.Title,
		GoogleDriveLink: blog.GoogleDriveLink,
		Image:           toImageDoc(blog.Image),
		Author:          author,
		Featured:        blog.Featured,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	created := *blog
	created.ID = doc.ID.Hex()
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (r *MongoRepository) aggregate(ctx context.Context, match bson.D, sort bool) ([]*models.Blog, error) {
	pipeline := mongo.Pipeline{}
	if len(match) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	if sort {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: usersCollection},
		{Key: "localField", Value: "author"},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: "authors"},
	}}})

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*models.Blog, 0)
	for cur.Next(ctx) {
		var d joinedDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *MongoRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.Blog, error) {
	var match bson.D
	if filter.FeaturedOnly {
		match = bson.D{{Key: "featured", Value: true}}
	}
	return r.aggregate(ctx, match, true)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Blog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrInvalidID
	}
	return r.getByObjectID(ctx, oid)
}

func (r *MongoRepository) getByObjectID(ctx context.Context, oid primitive.ObjectID) (*models.Blog, error) {
	found, err := r.aggregate(ctx, bson.D{{Key: "_id", Value: oid}}, false)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, common.ErrorNotFound
	}
	return found[0], nil
}

// Update is last-write-wins: the replace is not conditioned on the version
// fn saw.
func (r *MongoRepository) Update(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrInvalidID
	}

	b, err := r.getByObjectID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	set := bson.D{
		{Key: "title", Value: b.Title},
		{Key: "googleDriveLink", Value: b.GoogleDriveLink},
		{Key: "updatedAt", Value: b.UpdatedAt},
	}
	update := bson.D{}
	if img := toImageDoc(b.Image); img != nil {
		set = append(set, bson.E{Key: "image", Value: img})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "image", Value: ""}}})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string, fn MutateFunc) (*models.Blog, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, common.ErrInvalidID
	}

	b, err := r.getByObjectID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, common.ErrorNotFound
	}
	return b, nil
}
