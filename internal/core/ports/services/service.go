package services

// ServiceContainer holds instances of all the application services.
// It is the entry point handlers use to reach the ledger.
type ServiceContainer struct {
	Account        AccountSvcFacade
	Movement       MovementSvcFacade
	Transfer       TransferSvcFacade
	Sale           SaleSvcFacade
	Purchase       PurchaseSvcFacade
	Note           NoteSvcFacade
	Reconciliation ReconciliationSvcFacade
	Reporting      ReportingService
}
