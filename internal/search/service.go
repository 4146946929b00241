package search

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/goliatone/go-service-core/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result is one page of search results.
type Result struct {
	Items           []*Item       `json:"items"`
	TotalCount      int           `json:"totalCount"`
	Page            int           `json:"page"`
	PageSize        int           `json:"pageSize"`
	TotalPages      int           `json:"totalPages"`
	HasNextPage     bool          `json:"hasNextPage"`
	HasPreviousPage bool          `json:"hasPreviousPage"`
	Query           string        `json:"query"`
	SearchTime      time.Duration `json:"searchTime"`
}

type CreateInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        string          `json:"tags"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
	Source      string          `json:"source"`
	SourceID    uuid.UUID       `json:"sourceId"`
}

// UpdateInput changes descriptive fields; nil fields are left as they are.
type UpdateInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Tags        *string          `json:"tags"`
	ImageURL    *string          `json:"imageUrl"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
}

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger.With("service", CachePrefix),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	q = q.Normalize()

	items, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.SearchCount(ctx, q.Unpaged())
	if err != nil {
		return nil, err
	}

	res := &Result{
		Items:           items,
		TotalCount:      total,
		Page:            q.Page(),
		PageSize:        q.Take,
		TotalPages:      int(math.Ceil(float64(total) / float64(q.Take))),
		HasNextPage:     q.Skip+q.Take < total,
		HasPreviousPage: q.Skip > 0,
		Query:           q.Text,
		SearchTime:      time.Since(start),
	}
	s.logger.InfoContext(ctx, "search completed",
		"query", q.Text,
		"page", res.Page,
		"total", total,
		"duration_ms", res.SearchTime.Milliseconds(),
	)
	return res, nil
}

func (s *Service) List(ctx context.Context) ([]*Item, error) {
	return s.repo.GetAll(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			s.logger.WarnContext(ctx, "search item not found", "item_id", id)
			return nil, notFound(id)
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) GetBySource(ctx context.Context, source string, sourceID uuid.UUID) (*Item, error) {
	return s.repo.GetBySourceID(ctx, source, sourceID)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Item, error) {
	item := &Item{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		ImageURL:    in.ImageURL,
		Price:       in.Price,
		Status:      in.Status,
		Source:      in.Source,
		SourceID:    in.SourceID,
	}
	if err := item.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}
	item.Index(s.now())

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "created search item",
		"item_id", created.ID,
		"source", created.Source,
		"source_id", created.SourceID,
	)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item = item.Clone()
	setIf(&item.Title, in.Title)
	setIf(&item.Description, in.Description)
	setIf(&item.Category, in.Category)
	setIf(&item.Tags, in.Tags)
	setIf(&item.ImageURL, in.ImageURL)
	setIf(&item.Status, in.Status)
	if in.Price != nil {
		item.Price = *in.Price
	}
	if err := item.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}
	item.Index(s.now())

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "updated search item", "item_id", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.WarnContext(ctx, "search item not found for deletion", "item_id", id)
		return notFound(id)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "deleted search item", "item_id", id)
	return nil
}

// Reindex recomputes the search text of every item in one batch write.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}

	now := s.now()
	batch := make([]*Item, 0, len(items))
	for _, item := range items {
		c := item.Clone()
		c.Index(now)
		batch = append(batch, c)
	}
	if _, err := s.repo.UpdateRange(ctx, batch); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "reindexed search items", "count", len(batch))
	return len(batch), nil
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func notFound(id uuid.UUID) error {
	return apperr.NotFound("Search item with ID %s was not found", id)
}
