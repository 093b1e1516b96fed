package domain

import "time"

// CustomerType categorises a buyer for licensing purposes.
type CustomerType string

const (
	CustomerRetail      CustomerType = "retail"
	CustomerWholesale   CustomerType = "wholesale"
	CustomerDistributor CustomerType = "distributor"
	CustomerIndividual  CustomerType = "individual"
)

// Customer is a buyer that orders reference. The API exposes no customer
// CRUD; customers exist so order creation can validate and snapshot them.
type Customer struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	CompanyName   string       `json:"company_name,omitempty"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone,omitempty"`
	Address       string       `json:"address"`
	City          string       `json:"city,omitempty"`
	Country       string       `json:"country,omitempty"`
	CustomerType  CustomerType `json:"customer_type"`
	LicenseNumber string       `json:"license_number,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
