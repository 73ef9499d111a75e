package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	invtypes "github.com/Apurer/go-gin-bookstore/internal/domains/inventory/application/types"
)

type normalizedStockItemInput struct {
	ISBN         string                  `json:"isbn"`
	Title        string                  `json:"title"`
	Contributors []normalizedContributor `json:"contributors"`
	Publisher    string                  `json:"publisher"`
	Genre        string                  `json:"genre"`
	Price        string                  `json:"price"`
	Description  string                  `json:"description"`
	CoverURL     string                  `json:"coverUrl"`
	PublishedOn  string                  `json:"publishedOn"`
	Quantity     int                     `json:"quantity"`
}

type normalizedContributor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FingerprintStockItem builds a deterministic hash of the intake payload (excluding the idempotency key).
func FingerprintStockItem(input invtypes.StockItemInput) (string, error) {
	payload, err := json.Marshal(normalizeStockItemInput(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeStockItemInput(input invtypes.StockItemInput) normalizedStockItemInput {
	book := input.Book
	normalized := normalizedStockItemInput{
		ISBN:         strings.TrimSpace(book.ISBN),
		Title:        book.Title,
		Contributors: make([]normalizedContributor, 0, len(book.Contributors)),
		Publisher:    book.Publisher,
		Genre:        book.Genre,
		// String drops trailing zeros so 22 and 22.00 fingerprint alike.
		Price:       book.Price.String(),
		Description: book.Description,
		CoverURL:    book.CoverURL,
		PublishedOn: book.PublishedOn,
		Quantity:    input.Quantity,
	}
	for _, c := range book.Contributors {
		normalized.Contributors = append(normalized.Contributors, normalizedContributor{
			FirstName: strings.TrimSpace(c.FirstName),
			LastName:  strings.TrimSpace(c.LastName),
		})
	}
	return normalized
}
