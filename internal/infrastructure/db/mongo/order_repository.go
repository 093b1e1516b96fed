package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

const ordersCollection = "orders"

// OrderRepository persists orders with their line items embedded, so an
// order and its items live and die together (cascade delete for free).
type OrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(ordersCollection)}
}

type mongoOrderItem struct {
	StockID     string `bson:"stock_id"`
	ProductName string `bson:"product_name"`
	Quantity    string `bson:"quantity"`
	UnitPrice   string `bson:"unit_price"`
	TotalPrice  string `bson:"total_price"`
}

type mongoOrder struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	OrderNumber     string             `bson:"order_number"`
	CustomerID      string             `bson:"customer_id"`
	CustomerName    string             `bson:"customer_name"`
	OrderDate       time.Time          `bson:"order_date"`
	ShipDate        *time.Time         `bson:"ship_date,omitempty"`
	Status          string             `bson:"status"`
	Subtotal        string             `bson:"subtotal"`
	TaxAmount       string             `bson:"tax_amount"`
	ShippingAmount  string             `bson:"shipping_amount"`
	TotalAmount     string             `bson:"total_amount"`
	Notes           string             `bson:"notes,omitempty"`
	ShippingAddress string             `bson:"shipping_address,omitempty"`
	TrackingNumber  string             `bson:"tracking_number,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       *time.Time         `bson:"updated_at,omitempty"`
	CreatedBy       string             `bson:"created_by"`
	Items           []mongoOrderItem   `bson:"order_items"`
}

func toMongoOrder(o *domain.Order) mongoOrder {
	items := make([]mongoOrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, mongoOrderItem{
			StockID:     it.StockID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity.String(),
			UnitPrice:   it.UnitPrice.String(),
			TotalPrice:  it.TotalPrice.String(),
		})
	}
	return mongoOrder{
		OrderNumber:     o.OrderNumber,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		OrderDate:       o.OrderDate,
		ShipDate:        o.ShipDate,
		Status:          string(o.Status),
		Subtotal:        o.Subtotal.String(),
		TaxAmount:       o.TaxAmount.String(),
		ShippingAmount:  o.ShippingAmount.String(),
		TotalAmount:     o.TotalAmount.String(),
		Notes:           o.Notes,
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		CreatedBy:       o.CreatedBy,
		Items:           items,
	}
}

func (mo *mongoOrder) toDomain() (*domain.Order, error) {
	dec := func(s, field string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("decode order %s: %w", field, err)
		}
		return d, nil
	}

	subtotal, err := dec(mo.Subtotal, "subtotal")
	if err != nil {
		return nil, err
	}
	tax, err := dec(mo.TaxAmount, "tax_amount")
	if err != nil {
		return nil, err
	}
	shipping, err := dec(mo.ShippingAmount, "shipping_amount")
	if err != nil {
		return nil, err
	}
	total, err := dec(mo.TotalAmount, "total_amount")
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(mo.Items))
	for _, it := range mo.Items {
		quantity, err := dec(it.Quantity, "item quantity")
		if err != nil {
			return nil, err
		}
		price, err := dec(it.UnitPrice, "item unit_price")
		if err != nil {
			return nil, err
		}
		lineTotal, err := dec(it.TotalPrice, "item total_price")
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			StockID:     it.StockID,
			ProductName: it.ProductName,
			Quantity:    quantity,
			UnitPrice:   price,
			TotalPrice:  lineTotal,
		})
	}

	return &domain.Order{
		ID:              mo.ID.Hex(),
		OrderNumber:     mo.OrderNumber,
		CustomerID:      mo.CustomerID,
		CustomerName:    mo.CustomerName,
		OrderDate:       mo.OrderDate,
		ShipDate:        mo.ShipDate,
		Status:          domain.OrderStatus(mo.Status),
		Subtotal:        subtotal,
		TaxAmount:       tax,
		ShippingAmount:  shipping,
		TotalAmount:     total,
		Notes:           mo.Notes,
		ShippingAddress: mo.ShippingAddress,
		TrackingNumber:  mo.TrackingNumber,
		CreatedAt:       mo.CreatedAt,
		UpdatedAt:       mo.UpdatedAt,
		CreatedBy:       mo.CreatedBy,
		Items:           items,
	}, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	doc := toMongoOrder(order)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	created := *order
	created.ID = doc.ID.Hex()
	return &created, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrOrderNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *OrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.findOne(ctx, bson.M{"order_number": orderNumber})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*domain.Order, error) {
	var mo mongoOrder
	if err := r.coll.FindOne(ctx, filter).Decode(&mo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return mo.toDomain()
}

func (r *OrderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	for cursor.Next(ctx) {
		var mo mongoOrder
		if err := cursor.Decode(&mo); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		order, err := mo.toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, cursor.Err()
}

// Update persists the mutable order fields with a predicate write: the
// filter pins the status read by the caller, so of two racing transitions
// only one can match and commit. A miss on an existing document surfaces
// domain.ErrOrderConflict.
func (r *OrderRepository) Update(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	oid, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	update := bson.M{"$set": bson.M{
		"status":          string(order.Status),
		"ship_date":       order.ShipDate,
		"notes":           order.Notes,
		"tracking_number": order.TrackingNumber,
		"updated_at":      order.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid, "status": string(from)}, update)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, oid)
	}
	return nil
}

// Delete removes the order only while its status still equals from.
func (r *OrderRepository) Delete(ctx context.Context, id string, from domain.OrderStatus) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "status": string(from)})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.missOrConflict(ctx, oid)
	}
	return nil
}

// missOrConflict distinguishes a vanished order from one whose status
// changed underneath the caller.
func (r *OrderRepository) missOrConflict(ctx context.Context, oid primitive.ObjectID) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if count == 0 {
		return domain.ErrOrderNotFound
	}
	return domain.ErrOrderConflict
}

// EnsureIndexes creates the unique order number index.
func (r *OrderRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
