package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Collection gives REST-conventional access to one backend resource:
// GET /{resource}, GET /{resource}/{id}, POST, PUT, DELETE.
type Collection[T any] struct {
	client *Client
	path   string
}

func NewCollection[T any](client *Client, path string) *Collection[T] {
	return &Collection[T]{client: client, path: path}
}

func (c *Collection[T]) List(ctx context.Context, filter url.Values) ([]T, error) {
	var items []T
	err := c.client.JSON(ctx, Request{
		Method: http.MethodGet,
		Path:   c.path,
		Query:  filter,
	}, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	var item T
	if err := c.client.JSON(ctx, Request{Method: http.MethodGet, Path: c.path + "/" + id}, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Collection[T]) Create(ctx context.Context, in any) (*T, error) {
	return c.create(ctx, in, nil)
}

// CreateIdempotent attaches a client-generated idempotency key so a retried
// submission (user mashing a button, flaky connection) cannot double-create.
func (c *Collection[T]) CreateIdempotent(ctx context.Context, in any) (*T, error) {
	return c.create(ctx, in, map[string]string{"Idempotency-Key": uuid.NewString()})
}

func (c *Collection[T]) create(ctx context.Context, in any, header map[string]string) (*T, error) {
	var item T
	err := c.client.JSON(ctx, Request{
		Method: http.MethodPost,
		Path:   c.path,
		Body:   in,
		Header: header,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, in any) (*T, error) {
	var item T
	err := c.client.JSON(ctx, Request{
		Method: http.MethodPut,
		Path:   c.path + "/" + id,
		Body:   in,
	}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	_, err := c.client.Do(ctx, Request{Method: http.MethodDelete, Path: c.path + "/" + id})
	return err
}

// Service is a provider's listed offering.
type Service struct {
	ID          string  `json:"id"`
	ProviderID  string  `json:"providerId"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	PriceUnit   string  `json:"priceUnit,omitempty"`
	District    string  `json:"district,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// Booking links a customer, a service and an event date.
type Booking struct {
	ID         string    `json:"id"`
	ServiceID  string    `json:"serviceId"`
	CustomerID string    `json:"customerId"`
	EventDate  string    `json:"eventDate"`
	Venue      string    `json:"venue,omitempty"`
	GuestCount int       `json:"guestCount,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

type Quote struct {
	ID        string  `json:"id"`
	BookingID string  `json:"bookingId"`
	Amount    float64 `json:"amount"`
	Message   string  `json:"message,omitempty"`
	Status    string  `json:"status"`
}

type Contract struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	QuoteID   string `json:"quoteId,omitempty"`
	Terms     string `json:"terms,omitempty"`
	Status    string `json:"status"`
	SignedAt  string `json:"signedAt,omitempty"`
}

type Dispute struct {
	ID        string `json:"id"`
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
}

// BudgetItem, Guest and Task back the wedding planning tools. They are plain
// CRUD resources; the backend owns any aggregation.
type BudgetItem struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Name     string  `json:"name"`
	Planned  float64 `json:"planned"`
	Actual   float64 `json:"actual,omitempty"`
}

type Guest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Side  string `json:"side,omitempty"`
	RSVP  string `json:"rsvp,omitempty"`
	Table string `json:"table,omitempty"`
}

type Task struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"dueDate,omitempty"`
	Done    bool   `json:"done"`
}

// Marketplace bundles the typed resource collections the CLI works with.
type Marketplace struct {
	Services    *Collection[Service]
	Bookings    *Collection[Booking]
	Quotes      *Collection[Quote]
	Contracts   *Collection[Contract]
	Disputes    *Collection[Dispute]
	BudgetItems *Collection[BudgetItem]
	Guests      *Collection[Guest]
	Tasks       *Collection[Task]
}

func NewMarketplace(client *Client) *Marketplace {
	return &Marketplace{
		Services:    NewCollection[Service](client, "/services"),
		Bookings:    NewCollection[Booking](client, "/bookings"),
		Quotes:      NewCollection[Quote](client, "/quotes"),
		Contracts:   NewCollection[Contract](client, "/contracts"),
		Disputes:    NewCollection[Dispute](client, "/disputes"),
		BudgetItems: NewCollection[BudgetItem](client, "/budget-items"),
		Guests:      NewCollection[Guest](client, "/guests"),
		Tasks:       NewCollection[Task](client, "/tasks"),
	}
}
