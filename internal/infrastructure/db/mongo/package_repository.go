package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/route-tracking/internal/core/domain"
	"github.com/99minutos/route-tracking/internal/core/ports"
)

const collectionPackages = "packages"

// PackageRepository implements ports.PackageRepository using MongoDB.
// Documents are keyed by package id.
type PackageRepository struct {
	col *mongo.Collection
}

var _ ports.PackageRepository = (*PackageRepository)(nil)

func NewPackageRepository(db *mongo.Database) *PackageRepository {
	return &PackageRepository{col: db.Collection(collectionPackages)}
}

// Register upserts the package. Status and history are only written on insert,
// so re-planning never resets a package that already moved. The filter pins the
// previous route: if another plan claimed the package first, the upsert collides
// with the existing _id and the duplicate key is reported as a concurrent update.
func (r *PackageRepository) Register(ctx context.Context, st domain.PackageState, prevRouteID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$setOnInsert": bson.M{
			"status":             string(st.Status),
			"last_transition_at": st.LastTransitionAt.UTC(),
			"history": []bson.M{{
				"status":    string(st.Status),
				"timestamp": st.LastTransitionAt.UTC(),
			}},
		},
		"$set": bson.M{
			"route_id":            st.RouteID,
			"recipient":           st.Recipient,
			"assigned_stop_index": st.AssignedStopIndex,
		},
	}

	filter := bson.M{"_id": st.PackageID, "route_id": prevRouteID}
	if prevRouteID == "" {
		filter["route_id"] = bson.M{"$in": bson.A{nil, ""}}
	}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("register package %s: %w", st.PackageID, domain.ErrConcurrentUpdate)
		}
		return fmt.Errorf("register package: %w", err)
	}
	return nil
}

// Get retrieves a package by id.
func (r *PackageRepository) Get(ctx context.Context, packageID string) (*domain.PackageState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var st domain.PackageState
	err := r.col.FindOne(ctx, bson.M{"_id": packageID}).Decode(&st)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPackageNotFound
		}
		return nil, fmt.Errorf("find package: %w", err)
	}
	return &st, nil
}

// ListByRoute returns the packages of a route ordered by stop index.
func (r *PackageRepository) ListByRoute(ctx context.Context, routeID string) ([]domain.PackageState, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "assigned_stop_index", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"route_id": routeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.PackageState, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}
	return out, nil
}

// UpdateStatus atomically sets the new status and appends a history entry,
// guarded by the previous status.
func (r *PackageRepository) UpdateStatus(
	ctx context.Context,
	from domain.PackageStatus,
	next domain.PackageState,
	entry domain.StatusHistoryEntry,
) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	historyEntry := bson.M{
		"status":    string(entry.Status),
		"event":     string(entry.Event),
		"timestamp": entry.Timestamp.UTC(),
	}
	if entry.Reason != "" {
		historyEntry["reason"] = entry.Reason
	}

	set := bson.M{
		"status":             string(next.Status),
		"last_transition_at": next.LastTransitionAt.UTC(),
	}
	if next.FailureReason != "" {
		set["failure_reason"] = next.FailureReason
	}

	filter := bson.M{"_id": next.PackageID, "status": string(from)}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": historyEntry},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update package status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// AssignStop records the stop index a package occupies in its route.
func (r *PackageRepository) AssignStop(ctx context.Context, packageID, routeID string, stopIndex int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": packageID},
		bson.M{"$set": bson.M{"route_id": routeID, "assigned_stop_index": stopIndex}},
	)
	if err != nil {
		return fmt.Errorf("assign stop: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrPackageNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the packages collection.
func (r *PackageRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "route_id", Value: 1}, {Key: "assigned_stop_index", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
