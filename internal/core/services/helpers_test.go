package services_test

import (
	"fmt"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var fixedNow = time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// decEq matches a decimal argument by value rather than by representation.
func decEq(s string) any {
	want := d(s)
	return mock.MatchedBy(func(got decimal.Decimal) bool { return got.Equal(want) })
}

// testOptions pins the clock and hands out id-1, id-2, ... in call order.
func testOptions() []services.ServiceOption {
	n := 0
	return []services.ServiceOption{
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	}
}

func activeAccount(id, balance string) domain.Account {
	return domain.Account{AccountID: id, Name: "Account " + id, Category: domain.CategoryCash, Balance: d(balance), IsActive: true}
}

func lockedAccounts(accounts ...domain.Account) map[string]domain.Account {
	m := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountID] = a
	}
	return m
}
