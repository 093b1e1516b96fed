package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stillmaster/stillmaster-api/internal/core/domain"
)

const customersCollection = "customers"

// CustomerRepository resolves customers for order validation. There is
// no customer CRUD surface; rows arrive via seeding or external tooling.
type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(customersCollection)}
}

type mongoCustomer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Name          string             `bson:"name"`
	CompanyName   string             `bson:"company_name,omitempty"`
	Email         string             `bson:"email"`
	Phone         string             `bson:"phone,omitempty"`
	Address       string             `bson:"address"`
	City          string             `bson:"city,omitempty"`
	Country       string             `bson:"country,omitempty"`
	CustomerType  string             `bson:"customer_type"`
	LicenseNumber string             `bson:"license_number,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func (mc *mongoCustomer) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:            mc.ID.Hex(),
		Name:          mc.Name,
		CompanyName:   mc.CompanyName,
		Email:         mc.Email,
		Phone:         mc.Phone,
		Address:       mc.Address,
		City:          mc.City,
		Country:       mc.Country,
		CustomerType:  domain.CustomerType(mc.CustomerType),
		LicenseNumber: mc.LicenseNumber,
		CreatedAt:     mc.CreatedAt,
	}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCustomerNotFound
	}

	var mc mongoCustomer
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return mc.toDomain(), nil
}

// Insert adds a customer, used by startup seeding.
func (r *CustomerRepository) Insert(ctx context.Context, c *domain.Customer) (*domain.Customer, error) {
	doc := mongoCustomer{
		ID:            primitive.NewObjectID(),
		Name:          c.Name,
		CompanyName:   c.CompanyName,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		City:          c.City,
		Country:       c.Country,
		CustomerType:  string(c.CustomerType),
		LicenseNumber: c.LicenseNumber,
		CreatedAt:     c.CreatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert customer: %w", err)
	}
	created := *c
	created.ID = doc.ID.Hex()
	return &created, nil
}

// Count reports how many customers exist, used to decide whether to seed.
func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
