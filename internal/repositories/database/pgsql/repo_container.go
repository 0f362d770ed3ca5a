package pgsql

import (
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          &BaseRepository{Pool: dbPool},
		AccountRepo:        newPgxAccountRepository(dbPool),
		MovementRepo:       newPgxMovementRepository(dbPool),
		TransferRepo:       newPgxTransferRepository(dbPool),
		SaleRepo:           newPgxSaleRepository(dbPool),
		PurchaseRepo:       newPgxPurchaseRepository(dbPool),
		InventoryRepo:      newPgxInventoryRepository(dbPool),
		NoteRepo:           newPgxNoteRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		ReportingRepo:      newReportingRepository(dbPool),
	}
}
