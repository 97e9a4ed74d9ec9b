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

const collectionRoutes = "routes"

// RouteRepository stores whole route snapshots.
type RouteRepository struct {
	col *mongo.Collection
}

var _ ports.RouteRepository = (*RouteRepository)(nil)

func NewRouteRepository(db *mongo.Database) *RouteRepository {
	return &RouteRepository{col: db.Collection(collectionRoutes)}
}

// Save replaces the stored snapshot, inserting it on first save.
func (r *RouteRepository) Save(ctx context.Context, route domain.Route) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": route.ID}, route, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save route: %w", err)
	}
	return nil
}

// Get retrieves a route by id.
func (r *RouteRepository) Get(ctx context.Context, routeID string) (*domain.Route, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var route domain.Route
	if err := r.col.FindOne(ctx, bson.M{"_id": routeID}).Decode(&route); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRouteNotFound
		}
		return nil, fmt.Errorf("find route: %w", err)
	}
	return &route, nil
}

// Delete removes a route snapshot. Deleting a missing route is not an error.
func (r *RouteRepository) Delete(ctx context.Context, routeID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": routeID}); err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the routes collection.
func (r *RouteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "state", Value: 1}},
	})
	return err
}
