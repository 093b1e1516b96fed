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

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

const stocksCollection = "stocks"

// StockRepository persists stock items. Quantities and prices are stored
// as decimal strings to keep exact arithmetic; atomicity of quantity
// changes comes from the version field and CompareAndSetQuantity.
type StockRepository struct {
	coll *mongo.Collection
}

func NewStockRepository(db *mongo.Database) *StockRepository {
	return &StockRepository{coll: db.Collection(stocksCollection)}
}

type mongoStock struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ProductName      string             `bson:"product_name"`
	ProductType      string             `bson:"product_type"`
	BatchNumber      string             `bson:"batch_number,omitempty"`
	QuantityInStock  string             `bson:"quantity_in_stock"`
	UnitOfMeasure    string             `bson:"unit_of_measure"`
	AlcoholByVolume  string             `bson:"alcohol_by_volume"`
	DistillationDate *time.Time         `bson:"distillation_date,omitempty"`
	BottlingDate     *time.Time         `bson:"bottling_date,omitempty"`
	AgingMonths      int                `bson:"aging_months,omitempty"`
	BarrelType       string             `bson:"barrel_type,omitempty"`
	UnitPrice        string             `bson:"unit_price"`
	Location         string             `bson:"location"`
	Version          int64              `bson:"version"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        *time.Time         `bson:"updated_at,omitempty"`
	CreatedBy        string             `bson:"created_by,omitempty"`
}

func (ms *mongoStock) toDomain() (*domain.Stock, error) {
	quantity, err := decimal.NewFromString(ms.QuantityInStock)
	if err != nil {
		return nil, fmt.Errorf("decode stock quantity: %w", err)
	}
	price, err := decimal.NewFromString(ms.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("decode stock price: %w", err)
	}
	abv := decimal.Zero
	if ms.AlcoholByVolume != "" {
		if abv, err = decimal.NewFromString(ms.AlcoholByVolume); err != nil {
			return nil, fmt.Errorf("decode stock abv: %w", err)
		}
	}

	return &domain.Stock{
		ID:               ms.ID.Hex(),
		ProductName:      ms.ProductName,
		ProductType:      ms.ProductType,
		BatchNumber:      ms.BatchNumber,
		QuantityInStock:  quantity,
		UnitOfMeasure:    ms.UnitOfMeasure,
		AlcoholByVolume:  abv,
		DistillationDate: ms.DistillationDate,
		BottlingDate:     ms.BottlingDate,
		AgingMonths:      ms.AgingMonths,
		BarrelType:       ms.BarrelType,
		UnitPrice:        price,
		Location:         ms.Location,
		Version:          ms.Version,
		CreatedAt:        ms.CreatedAt,
		UpdatedAt:        ms.UpdatedAt,
		CreatedBy:        ms.CreatedBy,
	}, nil
}

func (r *StockRepository) FindByID(ctx context.Context, id string) (*domain.Stock, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrStockNotFound
	}

	var ms mongoStock
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&ms); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStockNotFound
		}
		return nil, fmt.Errorf("find stock: %w", err)
	}
	return ms.toDomain()
}

// CompareAndSetQuantity writes the new quantity only when the stored
// version still matches, bumping the version on success. A false result
// with nil error means the document changed underneath the caller.
func (r *StockRepository) CompareAndSetQuantity(ctx context.Context, id string, version int64, quantity decimal.Decimal, updatedAt time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrStockNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "version": version},
		bson.M{
			"$set": bson.M{
				"quantity_in_stock": quantity.String(),
				"updated_at":        updatedAt,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, fmt.Errorf("update stock quantity: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// Insert adds a stock item, used by startup seeding.
func (r *StockRepository) Insert(ctx context.Context, s *domain.Stock) (*domain.Stock, error) {
	doc := mongoStock{
		ID:               primitive.NewObjectID(),
		ProductName:      s.ProductName,
		ProductType:      s.ProductType,
		BatchNumber:      s.BatchNumber,
		QuantityInStock:  s.QuantityInStock.String(),
		UnitOfMeasure:    s.UnitOfMeasure,
		AlcoholByVolume:  s.AlcoholByVolume.String(),
		DistillationDate: s.DistillationDate,
		BottlingDate:     s.BottlingDate,
		AgingMonths:      s.AgingMonths,
		BarrelType:       s.BarrelType,
		UnitPrice:        s.UnitPrice.String(),
		Location:         s.Location,
		Version:          s.Version,
		CreatedAt:        s.CreatedAt,
		CreatedBy:        s.CreatedBy,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert stock: %w", err)
	}
	created := *s
	created.ID = doc.ID.Hex()
	return &created, nil
}

// Count reports how many stock items exist, used to decide whether to seed.
func (r *StockRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
