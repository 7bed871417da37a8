package service

import (
	"context"

	"github.com/google/uuid"

	"billora/internal/domain"
	"billora/internal/port"
	"billora/internal/validator"
)

// ClientInput is the DTO for creating or updating a client.
type ClientInput struct {
	Name        string
	CompanyName string
	Email       string
	Phone       string
	Address     string
	City        string
	State       string
	PostalCode  string
	Country     string
	Notes       string
}

var clientSchema = validator.Schema{
	Fields: map[string]validator.Constraint{
		"name":         {Required: true, MaxLen: 255},
		"company_name": {MaxLen: 255},
		"email":        {MaxLen: 255},
		"phone":        {MaxLen: 50},
		"city":         {MaxLen: 255},
		"state":        {MaxLen: 255},
		"postal_code":  {MaxLen: 20},
		"country":      {MaxLen: 255},
	},
}

// ClientService manages the client directory.
type ClientService interface {
	Create(ctx context.Context, input *ClientInput) (*domain.Client, error)
	Update(ctx context.Context, id uuid.UUID, input *ClientInput) (*domain.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context, search string, offset, limit int) ([]domain.Client, int, error)
}

type clientService struct {
	clientRepo port.ClientRepository
}

// NewClientService creates a ClientService.
func NewClientService(clientRepo port.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

func validateClient(input *ClientInput) error {
	return clientSchema.Validate(validator.Values{
		"name":         input.Name,
		"company_name": input.CompanyName,
		"email":        input.Email,
		"phone":        input.Phone,
		"city":         input.City,
		"state":        input.State,
		"postal_code":  input.PostalCode,
		"country":      input.Country,
	})
}

func applyClientInput(c *domain.Client, input *ClientInput) {
	c.Name = input.Name
	c.CompanyName = input.CompanyName
	c.Email = input.Email
	c.Phone = input.Phone
	c.Address = input.Address
	c.City = input.City
	c.State = input.State
	c.PostalCode = input.PostalCode
	c.Country = input.Country
	c.Notes = input.Notes
}

func (s *clientService) Create(ctx context.Context, input *ClientInput) (*domain.Client, error) {
	if err := validateClient(input); err != nil {
		return nil, err
	}
	client := &domain.Client{ID: uuid.New()}
	applyClientInput(client, input)
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, input *ClientInput) (*domain.Client, error) {
	if err := validateClient(input); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientInput(client, input)
	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.clientRepo.Delete(ctx, id)
}

func (s *clientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context, search string, offset, limit int) ([]domain.Client, int, error) {
	return s.clientRepo.List(ctx, search, offset, limit)
}
