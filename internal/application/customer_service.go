package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thuexe/service-rental/internal/domain/audit"
	customerDomain "github.com/thuexe/service-rental/internal/domain/customer"
	notificationDomain "github.com/thuexe/service-rental/internal/domain/notification"
	"github.com/thuexe/service-rental/internal/domain/rental"
	"github.com/thuexe/service-rental/internal/platform/domain"
)

// CustomerRequest carries profile fields. On update, empty fields are left unchanged.
type CustomerRequest struct {
	FullName       string `json:"full_name" binding:"max=100"`
	Phone          string `json:"phone" binding:"max=20"`
	Email          string `json:"email" binding:"omitempty,email,max=100"`
	IdentityNumber string `json:"identity_number" binding:"max=20"`
	Address        string `json:"address" binding:"max=500"`
	Occupation     string `json:"occupation" binding:"max=100"`
	DateOfBirth    string `json:"date_of_birth" binding:"omitempty,isodate"`
}

func (r CustomerRequest) profile() (customerDomain.Profile, error) {
	p := customerDomain.Profile{
		FullName:       r.FullName,
		Phone:          r.Phone,
		Email:          r.Email,
		IdentityNumber: r.IdentityNumber,
		Address:        r.Address,
		Occupation:     r.Occupation,
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(rental.DateLayout, r.DateOfBirth)
		if err != nil {
			return p, domain.NewValidationError("date_of_birth must be YYYY-MM-DD")
		}
		p.DateOfBirth = &dob
	}
	return p, nil
}

// CustomerService manages renter profiles and their notifications.
type CustomerService struct {
	*core
}

// CreateCustomer registers a walk-in customer at the counter.
func (s *CustomerService) CreateCustomer(ctx context.Context, actor Actor, req CustomerRequest) (*CustomerDTO, error) {
	p, err := req.profile()
	if err != nil {
		return nil, err
	}

	var result CustomerDTO
	err = s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		c, err := customerDomain.NewCustomer(nil, p, tx.now)
		if err != nil {
			return err
		}
		if err := tx.repos.Customers().Save(ctx, c); err != nil {
			return err
		}
		if err := tx.audit(ctx, audit.ActionCreateCustomer, fmt.Sprintf("registered customer %s", c.FullName())); err != nil {
			return err
		}
		result = toCustomerDTO(c, rental.DateOf(tx.now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateCustomer applies a partial profile update.
func (s *CustomerService) UpdateCustomer(ctx context.Context, actor Actor, id uuid.UUID, req CustomerRequest) (*CustomerDTO, error) {
	p, err := req.profile()
	if err != nil {
		return nil, err
	}

	var result CustomerDTO
	err = s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		c, err := tx.repos.Customers().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := c.UpdateProfile(p, tx.now); err != nil {
			return err
		}
		if err := tx.repos.Customers().Update(ctx, c); err != nil {
			return err
		}
		if err := tx.audit(ctx, audit.ActionUpdateCustomer, fmt.Sprintf("updated customer %s", c.ID())); err != nil {
			return err
		}
		result = toCustomerDTO(c, rental.DateOf(tx.now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCustomer retrieves a profile by ID.
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*CustomerDTO, error) {
	c, err := s.uow.Repositories().Customers().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCustomerDTO(c, s.today())
	return &result, nil
}

// ListCustomers returns a page of profiles, newest first.
func (s *CustomerService) ListCustomers(ctx context.Context, page, limit int) (*domain.PaginatedResult[CustomerDTO], error) {
	page, limit = normalizePage(page, limit)
	customers, total, err := s.uow.Repositories().Customers().List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	today := s.today()
	dtos := mapSlice(customers, func(c *customerDomain.Customer) CustomerDTO { return toCustomerDTO(c, today) })
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetMyProfile returns the profile linked to the caller's login.
func (s *CustomerService) GetMyProfile(ctx context.Context, actor Actor) (*CustomerDTO, error) {
	c, err := s.uow.Repositories().Customers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	result := toCustomerDTO(c, s.today())
	return &result, nil
}

// UpsertMyProfile creates the caller's profile on first use and updates it afterwards.
func (s *CustomerService) UpsertMyProfile(ctx context.Context, actor Actor, req CustomerRequest) (*CustomerDTO, error) {
	p, err := req.profile()
	if err != nil {
		return nil, err
	}

	var result CustomerDTO
	err = s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		c, err := tx.repos.Customers().FindByUserID(ctx, actor.UserID)
		switch {
		case domain.IsCode(err, domain.CodeNotFound):
			userID := actor.UserID
			if c, err = customerDomain.NewCustomer(&userID, p, tx.now); err != nil {
				return err
			}
			if err := tx.repos.Customers().Save(ctx, c); err != nil {
				return err
			}
			if err := tx.audit(ctx, audit.ActionCreateCustomer, "customer created own profile"); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := c.UpdateProfile(p, tx.now); err != nil {
				return err
			}
			if err := tx.repos.Customers().Update(ctx, c); err != nil {
				return err
			}
			if err := tx.audit(ctx, audit.ActionUpdateCustomer, "customer updated own profile"); err != nil {
				return err
			}
		}
		result = toCustomerDTO(c, rental.DateOf(tx.now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMyNotifications returns the caller's notifications, newest first.
func (s *CustomerService) ListMyNotifications(ctx context.Context, actor Actor, page, limit int) (*domain.PaginatedResult[NotificationDTO], error) {
	repos := s.uow.Repositories()
	c, err := repos.Customers().FindByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	page, limit = normalizePage(page, limit)
	items, total, err := repos.Notifications().FindByCustomerID(ctx, c.ID(), page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(mapSlice(items, toNotificationDTO), total, page, limit)
	return &result, nil
}

// MarkNotificationRead marks one of the caller's notifications as read.
func (s *CustomerService) MarkNotificationRead(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.run(ctx, actor, func(ctx context.Context, tx *txScope) error {
		c, err := tx.repos.Customers().FindByUserID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		n, err := tx.repos.Notifications().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if n.CustomerID() != c.ID() || n.Status() == notificationDomain.StatusDeleted {
			return domain.NewNotFoundError("Notification", id.String())
		}
		if !n.MarkRead(tx.now) {
			return nil
		}
		if err := tx.repos.Notifications().Update(ctx, n); err != nil {
			return err
		}
		return tx.audit(ctx, audit.ActionReadNotification, fmt.Sprintf("read notification %s", id))
	})
}
