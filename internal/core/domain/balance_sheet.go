package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSheetFigures are the raw aggregates the balance sheet is composed from.
type BalanceSheetFigures struct {
	Accounts               []Account
	UnattributedCash       decimal.Decimal
	SaleOutstanding        decimal.Decimal
	CustomerCredits        decimal.Decimal
	PurchaseOutstanding    decimal.Decimal
	SupplierDebits         decimal.Decimal
	InventoryValue         decimal.Decimal
	FixedAssetCost         decimal.Decimal
	FixedAssetDepreciation decimal.Decimal
	SaleTax                decimal.Decimal
	TaxPaid                decimal.Decimal
	Contributions          decimal.Decimal
	Withdrawals            decimal.Decimal
	Expenditures           decimal.Decimal
	RealizedProfit         decimal.Decimal
	InProgressProfit       decimal.Decimal
	DebitNoteProfit        decimal.Decimal
	CreditNoteLoss         decimal.Decimal
}

// Assets side of the balance sheet.
type Assets struct {
	CashByCategory   map[AccountCategory]decimal.Decimal `json:"cashByCategory"`
	Cash             decimal.Decimal                     `json:"cash"`
	UnattributedCash decimal.Decimal                     `json:"unattributedCash"`
	GrossReceivables decimal.Decimal                     `json:"grossReceivables"`
	CustomerCredits  decimal.Decimal                     `json:"customerCredits"`
	Receivables      decimal.Decimal                     `json:"receivables"`
	Inventory        decimal.Decimal                     `json:"inventory"`
	FixedAssets      decimal.Decimal                     `json:"fixedAssets"`
	Total            decimal.Decimal                     `json:"total"`
}

// Liabilities side of the balance sheet.
type Liabilities struct {
	GrossPayables  decimal.Decimal `json:"grossPayables"`
	SupplierDebits decimal.Decimal `json:"supplierDebits"`
	Payables       decimal.Decimal `json:"payables"`
	UnpaidTax      decimal.Decimal `json:"unpaidTax"`
	Total          decimal.Decimal `json:"total"`
}

// RetainedEarnings is the estimate of accumulated profit.
type RetainedEarnings struct {
	RealizedProfit   decimal.Decimal `json:"realizedProfit"`
	InProgressProfit decimal.Decimal `json:"inProgressProfit"`
	DebitNoteProfit  decimal.Decimal `json:"debitNoteProfit"`
	CreditNoteLoss   decimal.Decimal `json:"creditNoteLoss"`
	Expenditures     decimal.Decimal `json:"expenditures"`
	Total            decimal.Decimal `json:"total"`
}

// Equity side of the balance sheet.
type Equity struct {
	Contributions    decimal.Decimal  `json:"contributions"`
	Withdrawals      decimal.Decimal  `json:"withdrawals"`
	NetCapital       decimal.Decimal  `json:"netCapital"`
	RetainedEarnings RetainedEarnings `json:"retainedEarnings"`
	Total            decimal.Decimal  `json:"total"`
}

// BalanceSheet is a point-in-time snapshot. Difference is Assets − (Liabilities + Equity)
// and is reported as is; a non-zero value flags inconsistent data.
type BalanceSheet struct {
	AsOf        time.Time       `json:"asOf"`
	Assets      Assets          `json:"assets"`
	Liabilities Liabilities     `json:"liabilities"`
	Equity      Equity          `json:"equity"`
	Difference  decimal.Decimal `json:"difference"`
}

// ComposeBalanceSheet derives the statement from the figures.
func ComposeBalanceSheet(f BalanceSheetFigures, asOf time.Time) BalanceSheet {
	byCategory := map[AccountCategory]decimal.Decimal{}
	cash := decimal.Zero
	for _, a := range f.Accounts {
		byCategory[a.Category] = byCategory[a.Category].Add(a.Balance)
		cash = cash.Add(a.Balance)
	}

	assets := Assets{
		CashByCategory:   byCategory,
		Cash:             cash,
		UnattributedCash: f.UnattributedCash,
		GrossReceivables: f.SaleOutstanding,
		CustomerCredits:  f.CustomerCredits,
		Receivables:      f.SaleOutstanding.Sub(f.CustomerCredits),
		Inventory:        f.InventoryValue,
		FixedAssets:      f.FixedAssetCost.Sub(f.FixedAssetDepreciation),
	}
	assets.Total = assets.Cash.Add(assets.UnattributedCash).Add(assets.Receivables).Add(assets.Inventory).Add(assets.FixedAssets)

	liabilities := Liabilities{
		GrossPayables:  f.PurchaseOutstanding,
		SupplierDebits: f.SupplierDebits,
		Payables:       f.PurchaseOutstanding.Sub(f.SupplierDebits),
		UnpaidTax:      f.SaleTax.Sub(f.TaxPaid),
	}
	liabilities.Total = liabilities.Payables.Add(liabilities.UnpaidTax)

	retained := RetainedEarnings{
		RealizedProfit:   f.RealizedProfit,
		InProgressProfit: f.InProgressProfit,
		DebitNoteProfit:  f.DebitNoteProfit,
		CreditNoteLoss:   f.CreditNoteLoss,
		Expenditures:     f.Expenditures,
	}
	retained.Total = retained.RealizedProfit.Add(retained.InProgressProfit).Add(retained.DebitNoteProfit).
		Sub(retained.CreditNoteLoss).Sub(retained.Expenditures)

	equity := Equity{
		Contributions:    f.Contributions,
		Withdrawals:      f.Withdrawals,
		NetCapital:       f.Contributions.Sub(f.Withdrawals),
		RetainedEarnings: retained,
	}
	equity.Total = equity.NetCapital.Add(retained.Total)

	return BalanceSheet{
		AsOf:        asOf.UTC(),
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Difference:  assets.Total.Sub(liabilities.Total.Add(equity.Total)),
	}
}
