package repositories

// RepositoryProvider holds every repository the services depend on.
type RepositoryProvider struct {
	TxManager          TransactionManager
	AccountRepo        AccountRepositoryFacade
	MovementRepo       MovementRepositoryFacade
	TransferRepo       TransferRepositoryFacade
	SaleRepo           SaleRepositoryFacade
	PurchaseRepo       PurchaseRepositoryFacade
	InventoryRepo      InventoryRepositoryFacade
	NoteRepo           NoteRepositoryFacade
	ReconciliationRepo ReconciliationRepositoryFacade
	ReportingRepo      ReportingRepository
}
