package auction

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-service-core/internal/bunstore"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewBunRepository returns a postgres backed auction repository.
func NewBunRepository(db *bun.DB) *bunstore.Store[*Auction] {
	handlers := repository.ModelHandlers[*Auction]{
		NewRecord: func() *Auction { return &Auction{} },
		GetID: func(a *Auction) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Auction, id uuid.UUID) { a.ID = id },
		GetIdentifier: func() string {
			return "seller"
		},
	}
	return bunstore.New[*Auction](repository.NewRepository[*Auction](db, handlers), "auction", bunstore.WithTransactions(db))
}

// CreateSchema creates the auctions table when it does not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	_, err := db.NewCreateTable().
		Model((*Auction)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
