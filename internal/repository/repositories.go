package repository

import "gorm.io/gorm"

// Repositories groups the store used by the services. The gorm-backed set is
// built by NewRepositories; memory.Store provides an in-process one.
type Repositories struct {
	Tx             TransactionManager
	Suppliers      SupplierRepository
	Products       ProductRepository
	PurchaseOrders PurchaseOrderRepository
	QCReports      QCReportRepository
	Receipts       ReceiptRepository
	Sequences      SequenceRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Tx:             NewTransactionManager(db),
		Suppliers:      NewSupplierRepository(db),
		Products:       NewProductRepository(db),
		PurchaseOrders: NewPurchaseOrderRepository(db),
		QCReports:      NewQCReportRepository(db),
		Receipts:       NewReceiptRepository(db),
		Sequences:      NewSequenceRepository(db),
	}
}
