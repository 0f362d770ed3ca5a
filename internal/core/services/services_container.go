package services

import (
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
)

// NewServiceContainer wires every service over the shared repository provider.
// Options apply to all services, so tests can pin the clock and ID generator once.
func NewServiceContainer(repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:        NewAccountService(repos, options...),
		Movement:       NewMovementService(repos, options...),
		Transfer:       NewTransferService(repos, options...),
		Sale:           NewSaleService(repos, options...),
		Purchase:       NewPurchaseService(repos, options...),
		Note:           NewNoteService(repos, options...),
		Reconciliation: NewReconciliationService(repos, options...),
		Reporting:      NewReportingService(repos, options...),
	}
}
