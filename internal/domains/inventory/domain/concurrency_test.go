package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestConcurrentCartsShareOneLedger(t *testing.T) {
	defer goleak.VerifyNone(t)

	const stock = 200
	ledger := newLedger(t, stocked{mockingbird(), stock}, stocked{kiteRunner(), stock})
	carts := make([]*Cart, 16)
	for i := range carts {
		carts[i] = NewCart(ShopperID(fmt.Sprintf("shopper-%d", i)), ledger)
	}

	var wg sync.WaitGroup
	for i, cart := range carts {
		wg.Add(1)
		go func(i int, cart *Cart) {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				isbn := mockingbirdISBN
				if (i+n)%2 == 0 {
					isbn = kiteRunnerISBN
				}
				if n%3 == 2 {
					_ = cart.Remove(isbn, 1)
					continue
				}
				_ = cart.Add(isbn, 2)
			}
		}(i, cart)
	}
	// writers outside any cart race with the reservations
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 0; n < 50; n++ {
			if ledger.Reduce(mockingbirdISBN, 1) == nil {
				assert.NoError(t, ledger.AddItem(mockingbird(), 1))
			}
			_ = ledger.Query(Query{Text: "the", Sort: SortPriceAscending})
		}
	}()
	wg.Wait()

	for _, isbn := range []string{mockingbirdISBN, kiteRunnerISBN} {
		held := ledger.Quantity(isbn)
		for _, cart := range carts {
			held += cart.Quantity(isbn)
		}
		assert.Equal(t, stock, held, "units of %s must be conserved", isbn)
	}
	for _, entry := range ledger.Entries() {
		assert.Positive(t, entry.Quantity)
	}
}

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	defer goleak.VerifyNone(t)

	ledger := newLedger(t, stocked{kiteRunner(), 10})
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sold int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart := NewCart(ShopperID(fmt.Sprintf("buyer-%d", i)), ledger)
			if cart.Add(kiteRunnerISBN, 1) != nil {
				return
			}
			receipt := cart.Checkout()
			mu.Lock()
			sold += receipt.Quantity
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, sold)
	assert.Zero(t, ledger.Quantity(kiteRunnerISBN))
}
