// Package mongo implements the store ports against a hosted MongoDB
// deployment. Batches are committed inside a session transaction so a
// multi-collection mutation set is visible all-at-once or not-at-all; this
// requires a replica-set deployment, which every hosted offering provides.
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

	"spendwise/internal/core"
	"spendwise/internal/storage"
)

const (
	transactionsCollection = "transactions"
	categoriesCollection   = "categories"
)

type Store struct {
	client *mongo.Client
	txns   *mongo.Collection
	cats   *mongo.Collection
}

// Open connects and pings the deployment before returning a usable store.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client: client,
		txns:   db.Collection(transactionsCollection),
		cats:   db.Collection(categoriesCollection),
	}, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

type txnDoc struct {
	ID          string    `bson:"_id"`
	User        string    `bson:"user"`
	Date        string    `bson:"date"`
	Type        string    `bson:"type"`
	Amount      float64   `bson:"amount"`
	Category    string    `bson:"category"`
	Description string    `bson:"description"`
	CreatedAt   time.Time `bson:"createdAt"`
}

type catDoc struct {
	ID        string    `bson:"_id"`
	User      string    `bson:"user"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d txnDoc) toCore() core.Transaction {
	return core.Transaction{
		ID:          d.ID,
		Date:        core.Date(d.Date),
		Type:        core.TxnType(d.Type),
		Amount:      d.Amount,
		Category:    d.Category,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
	}
}

func (s *Store) findTransactions(ctx context.Context, filter bson.M, limit int) ([]core.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.txns.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []txnDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]core.Transaction, len(docs))
	for i, d := range docs {
		out[i] = d.toCore()
	}
	return out, nil
}

func (s *Store) ListTransactions(ctx context.Context, user string, limit int) ([]core.Transaction, error) {
	out, err := s.findTransactions(ctx, bson.M{"user": user}, limit)
	if err != nil {
		return nil, core.StoreFailure("list transactions", err)
	}
	return out, nil
}

func (s *Store) CreateTransaction(ctx context.Context, user string, t core.Transaction) (string, error) {
	doc := txnDoc{
		ID:          primitive.NewObjectID().Hex(),
		User:        user,
		Date:        string(t.Date),
		Type:        string(t.Type),
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.txns.InsertOne(ctx, doc); err != nil {
		return "", core.StoreFailure("create transaction", err)
	}
	return doc.ID, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, user, id string, t core.Transaction) error {
	res, err := s.txns.UpdateOne(ctx,
		bson.M{"_id": id, "user": user},
		bson.M{"$set": bson.M{
			"date":        string(t.Date),
			"type":        string(t.Type),
			"amount":      t.Amount,
			"category":    t.Category,
			"description": t.Description,
		}})
	if err != nil {
		return core.StoreFailure("update transaction", err)
	}
	if res.MatchedCount == 0 {
		return core.NotFound("transaction", id)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, user, id string) error {
	res, err := s.txns.DeleteOne(ctx, bson.M{"_id": id, "user": user})
	if err != nil {
		return core.StoreFailure("delete transaction", err)
	}
	if res.DeletedCount == 0 {
		return core.NotFound("transaction", id)
	}
	return nil
}

func (s *Store) QueryTransactionsByCategory(ctx context.Context, user, category string) ([]core.Transaction, error) {
	out, err := s.findTransactions(ctx, bson.M{"user": user, "category": category}, 0)
	if err != nil {
		return nil, core.StoreFailure("query transactions by category", err)
	}
	return out, nil
}

func (s *Store) ListCategories(ctx context.Context, user string) ([]core.Category, error) {
	cur, err := s.cats.Find(ctx, bson.M{"user": user},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	var docs []catDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, core.StoreFailure("list categories", err)
	}
	out := make([]core.Category, len(docs))
	for i, d := range docs {
		out[i] = core.Category{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt}
	}
	return out, nil
}

func (s *Store) CreateCategory(ctx context.Context, user string, c core.Category) (string, error) {
	doc := catDoc{
		ID:        primitive.NewObjectID().Hex(),
		User:      user,
		Name:      c.Name,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.cats.InsertOne(ctx, doc); err != nil {
		return "", core.StoreFailure("create category", err)
	}
	return doc.ID, nil
}

func (s *Store) UpdateCategory(ctx context.Context, user, id, name string) error {
	res, err := s.cats.UpdateOne(ctx,
		bson.M{"_id": id, "user": user},
		bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return core.StoreFailure("update category", err)
	}
	if res.MatchedCount == 0 {
		return core.NotFound("category", id)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, user, id string) error {
	res, err := s.cats.DeleteOne(ctx, bson.M{"_id": id, "user": user})
	if err != nil {
		return core.StoreFailure("delete category", err)
	}
	if res.DeletedCount == 0 {
		return core.NotFound("category", id)
	}
	return nil
}

func (s *Store) Batch(user string) storage.Batch {
	return &batch{store: s, user: user}
}

type batch struct {
	store *Store
	user  string

	txnModels []mongo.WriteModel
	catModels []mongo.WriteModel
	// matched counts expected from update/delete models; a shortfall means a
	// target disappeared and the whole batch is aborted.
	txnTargets int64
	catTargets int64
}

func (b *batch) UpdateTransactionCategory(id, category string) {
	b.txnModels = append(b.txnModels, mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": id, "user": b.user}).
		SetUpdate(bson.M{"$set": bson.M{"category": category}}))
	b.txnTargets++
}

func (b *batch) DeleteTransaction(id string) {
	b.txnModels = append(b.txnModels, mongo.NewDeleteOneModel().
		SetFilter(bson.M{"_id": id, "user": b.user}))
	b.txnTargets++
}

func (b *batch) CreateCategory(name string) {
	b.catModels = append(b.catModels, mongo.NewInsertOneModel().SetDocument(catDoc{
		ID:        primitive.NewObjectID().Hex(),
		User:      b.user,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}))
}

func (b *batch) UpdateCategory(id, name string) {
	b.catModels = append(b.catModels, mongo.NewUpdateOneModel().
		SetFilter(bson.M{"_id": id, "user": b.user}).
		SetUpdate(bson.M{"$set": bson.M{"name": name}}))
	b.catTargets++
}

func (b *batch) DeleteCategory(id string) {
	b.catModels = append(b.catModels, mongo.NewDeleteOneModel().
		SetFilter(bson.M{"_id": id, "user": b.user}))
	b.catTargets++
}

var errBatchTargetMissing = errors.New("batch target no longer exists")

func (b *batch) Commit(ctx context.Context) error {
	if len(b.txnModels) == 0 && len(b.catModels) == 0 {
		return nil
	}

	session, err := b.store.client.StartSession()
	if err != nil {
		return core.StoreFailure("start session", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if len(b.txnModels) > 0 {
			res, err := b.store.txns.BulkWrite(sc, b.txnModels, options.BulkWrite().SetOrdered(true))
			if err != nil {
				return nil, err
			}
			if res.MatchedCount+res.DeletedCount < b.txnTargets {
				return nil, errBatchTargetMissing
			}
		}
		if len(b.catModels) > 0 {
			res, err := b.store.cats.BulkWrite(sc, b.catModels, options.BulkWrite().SetOrdered(true))
			if err != nil {
				return nil, err
			}
			if res.MatchedCount+res.DeletedCount < b.catTargets {
				return nil, errBatchTargetMissing
			}
		}
		return nil, nil
	})
	if err != nil {
		if errors.Is(err, errBatchTargetMissing) {
			return core.NotFound("batch target", "")
		}
		return core.StoreFailure("commit batch", err)
	}
	return nil
}
