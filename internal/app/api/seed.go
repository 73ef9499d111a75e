package api

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
	invports "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/ports"
)

// demoCatalog is stocked on an empty ledger when SEED_CATALOG is set.
var demoCatalog = []invtypes.StockItemInput{
	{
		Book: invtypes.BookInput{
			ISBN:         "0446310786",
			Title:        "To Kill a Mockingbird",
			Contributors: []invtypes.ContributorInput{{FirstName: "Harper", LastName: "Lee"}},
			Publisher:    "Grand Central Publishing",
			Genre:        "Classical",
			Price:        decimal.RequireFromString("12.99"),
			Description:  "Compassionate, dramatic, and deeply moving, To Kill A Mockingbird takes readers to the roots of human behavior.",
			PublishedOn:  "1960-07-11",
		},
		Quantity: 5,
	},
	{
		Book: invtypes.BookInput{
			ISBN:         "1573222453",
			Title:        "The Kite Runner",
			Contributors: []invtypes.ContributorInput{{FirstName: "Khaled", LastName: "Hosseini"}},
			Publisher:    "Riverhead Books",
			Genre:        "Historical fiction",
			Price:        decimal.RequireFromString("22.00"),
			Description:  "The Kite Runner tells the story of Amir, a young boy from the Wazir Akbar Khan district of Kabul.",
			PublishedOn:  "2003-05-29",
		},
		Quantity: 10,
	},
}

// seedCatalog stocks the demo catalog unless the ledger already holds items.
func seedCatalog(ctx context.Context, service invports.Service, logger *slog.Logger) error {
	stocked, err := service.ListStock(ctx)
	if err != nil {
		return err
	}
	if len(stocked) > 0 {
		logger.Info("ledger not empty, skipping catalog seed", slog.Int("items", len(stocked)))
		return nil
	}
	for _, item := range demoCatalog {
		item.IdempotencyKey = "seed-" + item.Book.ISBN
		if _, err := service.StockItem(ctx, item); err != nil {
			return err
		}
	}
	logger.Info("catalog seeded", slog.Int("items", len(demoCatalog)))
	return nil
}
