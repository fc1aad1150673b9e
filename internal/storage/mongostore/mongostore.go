package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"costs/internal/core"
)

type costDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	UserID      int64              `bson:"userid"`
	Sum         float64            `bson:"sum"`
	Date        time.Time          `bson:"date"`
}

type userDoc struct {
	ID            int64      `bson:"id"`
	FirstName     string     `bson:"first_name"`
	LastName      string     `bson:"last_name"`
	Birthday      *time.Time `bson:"birthday,omitempty"`
	MaritalStatus string     `bson:"marital_status"`
	TotalCost     float64    `bson:"totalCost"`
}

// Store implements storage.Store on MongoDB.
type Store struct {
	client *mongo.Client
	costs  *mongo.Collection
	users  *mongo.Collection
}

// New connects to uri, selects dbName and ensures the indexes exist.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{client: client, costs: db.Collection("costs"), users: db.Collection("users")}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", dbName)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	_, err = s.costs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userid", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create costs index: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) InsertCost(ctx context.Context, c core.Cost) (core.Cost, error) {
	if err := c.Validate(); err != nil {
		return core.Cost{}, err
	}
	doc := costDoc{
		ID:          primitive.NewObjectID(),
		Description: c.Description,
		Category:    string(c.Category),
		UserID:      c.UserID,
		Sum:         c.Sum,
		Date:        c.Date.UTC(),
	}
	if _, err := s.costs.InsertOne(ctx, doc); err != nil {
		return core.Cost{}, storeErr("insert cost", err)
	}
	c.ID = doc.ID.Hex()
	// BSON datetimes have millisecond precision.
	c.Date = time.UnixMilli(c.Date.UnixMilli()).In(c.Date.Location())
	return c, nil
}

func (s *Store) ListCosts(ctx context.Context, userID int64, w core.Window) ([]core.Cost, error) {
	filter := bson.M{
		"userid": userID,
		"date":   bson.M{"$gte": w.Start, "$lte": w.End},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.costs.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeErr("find costs", err)
	}
	defer cursor.Close(ctx)

	out := make([]core.Cost, 0)
	for cursor.Next(ctx) {
		var d costDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, storeErr("decode cost", err)
		}
		out = append(out, core.Cost{
			ID:          d.ID.Hex(),
			Description: d.Description,
			Category:    core.Category(d.Category),
			UserID:      d.UserID,
			Sum:         d.Sum,
			Date:        d.Date.UTC(),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate costs", err)
	}
	return out, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, storeErr("find user", err)
	}
	u := core.User{
		ID:            d.ID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		MaritalStatus: d.MaritalStatus,
		Total:         d.TotalCost,
	}
	if d.Birthday != nil {
		u.Birthday = d.Birthday.UTC()
	}
	return u, nil
}

// IncrementTotal uses $inc so the read-modify-write happens on the server.
func (s *Store) IncrementTotal(ctx context.Context, id int64, delta float64) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"totalCost": delta}})
	if err != nil {
		return storeErr("increment total", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) SetTotal(ctx context.Context, id int64, total float64) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"totalCost": total}})
	if err != nil {
		return storeErr("set total", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// UpsertUser refreshes profile fields; totalCost is only set on insert.
func (s *Store) UpsertUser(ctx context.Context, u core.User) error {
	set := bson.M{
		"first_name":     u.FirstName,
		"last_name":      u.LastName,
		"marital_status": u.MaritalStatus,
	}
	if !u.Birthday.IsZero() {
		set["birthday"] = u.Birthday.UTC()
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"totalCost": u.Total},
	}
	_, err := s.users.UpdateOne(ctx, bson.M{"id": u.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	opts := options.Find().
		SetProjection(bson.M{"id": 1, "_id": 0}).
		SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := s.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer cursor.Close(ctx)

	var ids []int64
	for cursor.Next(ctx) {
		var d struct {
			ID int64 `bson:"id"`
		}
		if err := cursor.Decode(&d); err != nil {
			return nil, storeErr("decode user id", err)
		}
		ids = append(ids, d.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate users", err)
	}
	return ids, nil
}

func (s *Store) SumCosts(ctx context.Context, userID int64) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userid": userID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$sum"}}}},
	}
	cursor, err := s.costs.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, storeErr("sum costs", err)
	}
	defer cursor.Close(ctx)

	var res []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &res); err != nil {
		return 0, storeErr("decode sum", err)
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].Total, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStore, op, err)
}
