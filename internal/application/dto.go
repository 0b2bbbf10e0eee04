package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/thuexe/service-rental/internal/domain/audit"
	bookingDomain "github.com/thuexe/service-rental/internal/domain/booking"
	carDomain "github.com/thuexe/service-rental/internal/domain/car"
	contractDomain "github.com/thuexe/service-rental/internal/domain/contract"
	customerDomain "github.com/thuexe/service-rental/internal/domain/customer"
	invoiceDomain "github.com/thuexe/service-rental/internal/domain/invoice"
	notificationDomain "github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
	"github.com/thuexe/service-rental/internal/proto/events"
)

// CarDTO is the response representation of a car.
type CarDTO struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	LicensePlate string          `json:"license_plate"`
	Brand        string          `json:"brand,omitempty"`
	Model        string          `json:"model,omitempty"`
	Year         int             `json:"year,omitempty"`
	Seats        int             `json:"seats,omitempty"`
	FuelType     string          `json:"fuel_type,omitempty"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AvailabilityDTO answers an availability query.
type AvailabilityDTO struct {
	CarID     uuid.UUID `json:"car_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Available bool      `json:"available"`
}

// CustomerDTO is the response representation of a customer profile.
type CustomerDTO struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	IdentityNumber string     `json:"identity_number,omitempty"`
	Address        string     `json:"address,omitempty"`
	Occupation     string     `json:"occupation,omitempty"`
	DateOfBirth    string     `json:"date_of_birth,omitempty"`
	Status         string     `json:"status"`
	MissingFields  []string   `json:"missing_fields,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	CarID       uuid.UUID       `json:"car_id"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Channel     string          `json:"channel"`
	Status      string          `json:"status"`
	RentalDays  int             `json:"rental_days"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Currency    string          `json:"currency"`
	Notes       string          `json:"notes,omitempty"`
	Version     int64           `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// ContractDTO is the response representation of a rental contract.
type ContractDTO struct {
	ID             uuid.UUID       `json:"id"`
	ContractNumber string          `json:"contract_number"`
	BookingID      *uuid.UUID      `json:"booking_id,omitempty"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CarID          uuid.UUID       `json:"car_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	RentalDays     int             `json:"rental_days"`
	PricePerDay    decimal.Decimal `json:"price_per_day"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Deposit        decimal.Decimal `json:"deposit"`
	Balance        decimal.Decimal `json:"balance"`
	Currency       string          `json:"currency"`
	Terms          string          `json:"terms"`
	Notes          string          `json:"notes,omitempty"`
	Status         string          `json:"status"`
	Version        int64           `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	SignedAt       *time.Time      `json:"signed_at,omitempty"`
	UpdatedAt      *time.Time      `json:"updated_at,omitempty"`
}

// InvoiceDTO is the response representation of an invoice.
type InvoiceDTO struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	ContractID    uuid.UUID       `json:"contract_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentDate   *time.Time      `json:"payment_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NotificationDTO is the response representation of a notification.
type NotificationDTO struct {
	ID        uuid.UUID  `json:"id"`
	CarID     *uuid.UUID `json:"car_id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// AuditEntryDTO is one audit log line.
type AuditEntryDTO struct {
	ID          uuid.UUID  `json:"id"`
	Action      string     `json:"action"`
	Description string     `json:"description"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	ActorRole   string     `json:"actor_role"`
	IPAddress   string     `json:"ip_address,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
}

// StatsDTO holds lifecycle statistics for the admin dashboard.
type StatsDTO struct {
	TotalBookings     int64            `json:"total_bookings"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	TotalContracts    int64            `json:"total_contracts"`
	ContractsByStatus map[string]int64 `json:"contracts_by_status"`
	DepositRate       decimal.Decimal  `json:"deposit_rate"`
}

// --- Mapping Helpers ---

func formatDate(t time.Time) string { return t.Format(rental.DateLayout) }

func toCarDTO(c *carDomain.Car) CarDTO {
	return CarDTO{
		ID:           c.ID(),
		Name:         c.Name(),
		LicensePlate: c.LicensePlate(),
		Brand:        c.Brand(),
		Model:        c.Model(),
		Year:         c.Year(),
		Seats:        c.Seats(),
		FuelType:     c.FuelType(),
		PricePerDay:  c.PricePerDay(),
		Status:       string(c.Status()),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
}

func toCustomerDTO(c *customerDomain.Customer, today time.Time) CustomerDTO {
	dto := CustomerDTO{
		ID:             c.ID(),
		UserID:         c.UserID(),
		FullName:       c.FullName(),
		Phone:          c.Phone(),
		Email:          c.Email(),
		IdentityNumber: c.IdentityNumber(),
		Address:        c.Address(),
		Occupation:     c.Occupation(),
		Status:         string(c.Status()),
		MissingFields:  c.MissingProfileFields(today),
		Version:        c.Version(),
		CreatedAt:      c.CreatedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
	if dob := c.DateOfBirth(); dob != nil {
		dto.DateOfBirth = formatDate(*dob)
	}
	return dto
}

func toBookingDTO(b *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:          b.ID(),
		CustomerID:  b.CustomerID(),
		CarID:       b.CarID(),
		StartDate:   formatDate(b.Period().Start),
		EndDate:     formatDate(b.Period().End),
		Channel:     string(b.Channel()),
		Status:      string(b.Status()),
		RentalDays:  b.RentalDays(),
		PricePerDay: b.PricePerDay(),
		TotalPrice:  b.TotalPrice(),
		Currency:    domain.CurrencyVND,
		Notes:       b.Notes(),
		Version:     b.Version(),
		CreatedAt:   b.CreatedAt(),
		UpdatedAt:   b.UpdatedAt(),
	}
}

func toContractDTO(c *contractDomain.Contract) ContractDTO {
	return ContractDTO{
		ID:             c.ID(),
		ContractNumber: c.ContractNumber(),
		BookingID:      c.BookingID(),
		CustomerID:     c.CustomerID(),
		CarID:          c.CarID(),
		StartDate:      formatDate(c.Period().Start),
		EndDate:        formatDate(c.Period().End),
		RentalDays:     c.RentalDays(),
		PricePerDay:    c.PricePerDay(),
		TotalPrice:     c.TotalPrice(),
		Deposit:        c.Deposit(),
		Balance:        c.Balance(),
		Currency:       domain.CurrencyVND,
		Terms:          c.Terms(),
		Notes:          c.Notes(),
		Status:         string(c.Status()),
		Version:        c.Version(),
		CreatedAt:      c.CreatedAt(),
		SignedAt:       c.SignedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
}

func toInvoiceDTO(i *invoiceDomain.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:            i.ID(),
		InvoiceNumber: i.InvoiceNumber(),
		CustomerID:    i.CustomerID(),
		ContractID:    i.ContractID(),
		Type:          string(i.Type()),
		Amount:        i.Amount(),
		Currency:      domain.CurrencyVND,
		Status:        string(i.Status()),
		PaymentDate:   i.PaymentDate(),
		Notes:         i.Notes(),
		CreatedAt:     i.CreatedAt(),
	}
}

func toNotificationDTO(n *notificationDomain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID(),
		CarID:     n.CarID(),
		Type:      string(n.Type()),
		Title:     n.Title(),
		Content:   n.Content(),
		Status:    string(n.Status()),
		CreatedAt: n.CreatedAt(),
		ReadAt:    n.ReadAt(),
	}
}

func toAuditEntryDTO(e *audit.Entry) AuditEntryDTO {
	return AuditEntryDTO(*e)
}

func mapSlice[S any, D any](items []S, fn func(S) D) []D {
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// --- Event Payloads ---

func bookingEvent(b *bookingDomain.Booking, at time.Time) events.BookingEvent {
	return events.BookingEvent{
		BookingID:  b.ID(),
		CustomerID: b.CustomerID(),
		CarID:      b.CarID(),
		Channel:    string(b.Channel()),
		Status:     string(b.Status()),
		StartDate:  formatDate(b.Period().Start),
		EndDate:    formatDate(b.Period().End),
		TotalPrice: b.TotalPrice(),
		Currency:   domain.CurrencyVND,
		OccurredAt: at,
	}
}

func contractEvent(c *contractDomain.Contract, at time.Time) events.ContractEvent {
	return events.ContractEvent{
		ContractID:     c.ID(),
		ContractNumber: c.ContractNumber(),
		BookingID:      c.BookingID(),
		CustomerID:     c.CustomerID(),
		CarID:          c.CarID(),
		Status:         string(c.Status()),
		TotalPrice:     c.TotalPrice(),
		Deposit:        c.Deposit(),
		Currency:       domain.CurrencyVND,
		OccurredAt:     at,
	}
}
