package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

const movementsCollection = "stock_movements"

// MovementRepository is the append-only audit trail of stock adjustments.
type MovementRepository struct {
	coll *mongo.Collection
}

func NewMovementRepository(db *mongo.Database) *MovementRepository {
	return &MovementRepository{coll: db.Collection(movementsCollection)}
}

type mongoMovement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	StockID     string             `bson:"stock_id"`
	Direction   string             `bson:"direction"`
	Quantity    string             `bson:"quantity"`
	Resulting   string             `bson:"resulting_quantity"`
	Reason      string             `bson:"reason"`
	OrderNumber string             `bson:"order_number,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (r *MovementRepository) Insert(ctx context.Context, m *domain.StockMovement) error {
	doc := mongoMovement{
		ID:          primitive.NewObjectID(),
		StockID:     m.StockID,
		Direction:   m.Direction,
		Quantity:    m.Quantity.String(),
		Resulting:   m.Resulting.String(),
		Reason:      m.Reason,
		OrderNumber: m.OrderNumber,
		CreatedAt:   m.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}
