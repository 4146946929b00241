package auction

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/repositorycache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the auction persistence contract, usually a cached one.
type Repository = repositorycache.Repository[*Auction]

// CreateInput is the payload of a new auction. The seller comes from the
// caller's identity, not from the payload.
type CreateInput struct {
	ReservePrice decimal.Decimal `json:"reservePrice"`
	AuctionEnd   time.Time       `json:"auctionEnd"`
	Item         Item            `json:"item"`
}

// UpdateInput changes item details; nil fields are left as they are.
type UpdateInput struct {
	Make    *string `json:"make"`
	Model   *string `json:"model"`
	Color   *string `json:"color"`
	Mileage *int    `json:"mileage"`
	Year    *int    `json:"year"`
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger.With("service", CachePrefix)}
}

func (s *Service) List(ctx context.Context) ([]*Auction, error) {
	auctions, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "listed auctions", "count", len(auctions))
	return auctions, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Auction, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			s.logger.WarnContext(ctx, "auction not found", "auction_id", id)
			return nil, notFound(id)
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput, seller string) (*Auction, error) {
	a := &Auction{
		ReservePrice: in.ReservePrice,
		Seller:       seller,
		AuctionEnd:   in.AuctionEnd,
		Status:       StatusLive,
		Item:         in.Item,
	}
	if err := a.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created auction", "auction_id", created.ID, "seller", seller)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Auction, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	a = a.Clone()
	if in.Make != nil {
		a.Item.Make = *in.Make
	}
	if in.Model != nil {
		a.Item.Model = *in.Model
	}
	if in.Color != nil {
		a.Item.Color = *in.Color
	}
	if in.Mileage != nil {
		a.Item.Mileage = *in.Mileage
	}
	if in.Year != nil {
		a.Item.Year = *in.Year
	}
	if err := a.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "updated auction", "auction_id", id)
	return updated, nil
}

// Delete removes id, reporting NotFound when it does not exist.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "auction not found for deletion", "auction_id", id)
		return notFound(id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "deleted auction", "auction_id", id)
	return nil
}

func notFound(id uuid.UUID) error {
	return apperr.NotFound("Auction with ID %s was not found", id)
}
