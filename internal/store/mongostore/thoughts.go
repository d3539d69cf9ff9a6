package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Idahel/js-project-api/types"
)

type thoughtDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Message   string        `bson:"message"`
	Hearts    int           `bson:"hearts"`
	CreatedAt time.Time     `bson:"createdAt"`
	UserID    bson.ObjectID `bson:"userId"`
}

func (d thoughtDocument) thought() types.Thought {
	return types.Thought{
		ID:        d.ID.Hex(),
		Message:   d.Message,
		Hearts:    d.Hearts,
		CreatedAt: d.CreatedAt.UTC(),
		UserID:    d.UserID.Hex(),
	}
}

// newThoughtDocument assigns a fresh id. Authors that are not object ids
// are stored as the nil id, which reads back as store.PlaceholderUserID.
func newThoughtDocument(t types.Thought) thoughtDocument {
	author, err := bson.ObjectIDFromHex(t.UserID)
	if err != nil {
		author = bson.NilObjectID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return thoughtDocument{
		ID:        bson.NewObjectID(),
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
		UserID:    author,
	}
}

// ThoughtRepository handles persistence for thoughts.
type ThoughtRepository struct {
	coll *mongo.Collection
}

func NewThoughtRepository(db *mongo.Database) *ThoughtRepository {
	return &ThoughtRepository{coll: db.Collection(thoughtsCollection)}
}

// thoughtFilter renders q's filters. ok is false when the id filter can
// never match, in which case the listing is empty.
func thoughtFilter(q types.ThoughtQuery) (filter bson.D, ok bool) {
	filter = bson.D{}
	if q.ID != "" {
		oid, err := bson.ObjectIDFromHex(q.ID)
		if err != nil {
			return nil, false
		}
		filter = append(filter, bson.E{Key: "_id", Value: oid})
	}
	if q.MinHearts != nil {
		filter = append(filter, bson.E{Key: "hearts", Value: bson.D{{Key: "$gte", Value: *q.MinHearts}}})
	}
	if q.Message != "" {
		filter = append(filter, bson.E{Key: "message", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(q.Message)},
			{Key: "$options", Value: "i"},
		}})
	}
	return filter, true
}

// thoughtSort returns nil for natural order.
func thoughtSort(order types.ThoughtSort) bson.D {
	switch {
	case order.Newest():
		return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}
	case order == types.SortCreatedAtAsc:
		return bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
	case order == types.SortHearts:
		return bson.D{{Key: "hearts", Value: -1}, {Key: "_id", Value: 1}}
	default:
		return nil
	}
}

func (r *ThoughtRepository) List(ctx context.Context, q types.ThoughtQuery) ([]types.Thought, int, error) {
	filter, ok := thoughtFilter(q)
	if !ok {
		return []types.Thought{}, 0, nil
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count thoughts: %w", err)
	}

	opts := options.Find().SetSkip(int64(q.Offset()))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if sort := thoughtSort(q.Sort); sort != nil {
		opts.SetSort(sort)
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find thoughts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []thoughtDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode thoughts: %w", err)
	}

	thoughts := make([]types.Thought, 0, len(docs))
	for _, d := range docs {
		thoughts = append(thoughts, d.thought())
	}
	return thoughts, int(total), nil
}

func (r *ThoughtRepository) Get(ctx context.Context, id string) (types.Thought, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Thought{}, err
	}
	var doc thoughtDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return types.Thought{}, translate(err)
	}
	return doc.thought(), nil
}

func (r *ThoughtRepository) Create(ctx context.Context, thought types.Thought) (types.Thought, error) {
	doc := newThoughtDocument(thought)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return types.Thought{}, translate(err)
	}
	return doc.thought(), nil
}

// Like increments hearts atomically.
func (r *ThoughtRepository) Like(ctx context.Context, id string) (types.Thought, error) {
	return r.findAndUpdate(ctx, id, bson.D{{Key: "$inc", Value: bson.D{{Key: "hearts", Value: 1}}}})
}

// Update applies the message edit and the floored unlike in one write.
func (r *ThoughtRepository) Update(ctx context.Context, id string, update types.ThoughtUpdate) (types.Thought, error) {
	return r.findAndUpdate(ctx, id, updatePipeline(update))
}

// updatePipeline uses an aggregation update so the unlike can be floored at
// zero server-side.
func updatePipeline(update types.ThoughtUpdate) mongo.Pipeline {
	set := bson.D{}
	if update.Message != nil {
		set = append(set, bson.E{Key: "message", Value: bson.D{{Key: "$literal", Value: *update.Message}}})
	}
	if update.Unlike {
		set = append(set, bson.E{Key: "hearts", Value: bson.D{{Key: "$max", Value: bson.A{
			0,
			bson.D{{Key: "$subtract", Value: bson.A{"$hearts", 1}}},
		}}}})
	}
	return mongo.Pipeline{{{Key: "$set", Value: set}}}
}

func (r *ThoughtRepository) findAndUpdate(ctx context.Context, id string, update any) (types.Thought, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Thought{}, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc thoughtDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, update, opts).Decode(&doc); err != nil {
		return types.Thought{}, translate(err)
	}
	return doc.thought(), nil
}

// Delete removes the thought and returns it as it was.
func (r *ThoughtRepository) Delete(ctx context.Context, id string) (types.Thought, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Thought{}, err
	}
	var doc thoughtDocument
	if err := r.coll.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		return types.Thought{}, translate(err)
	}
	return doc.thought(), nil
}

// Reset drops every thought and inserts seed in order.
func (r *ThoughtRepository) Reset(ctx context.Context, seed []types.Thought) (int, error) {
	if _, err := r.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return 0, fmt.Errorf("clear thoughts: %w", err)
	}
	if len(seed) == 0 {
		return 0, nil
	}

	docs := make([]thoughtDocument, 0, len(seed))
	for _, t := range seed {
		docs = append(docs, newThoughtDocument(t))
	}
	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert seed thoughts: %w", err)
	}
	return len(res.InsertedIDs), nil
}
