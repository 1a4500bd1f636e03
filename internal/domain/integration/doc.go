// Package integration contains the purchase-order verification bounded context.
// It describes what the service needs from the external ERP (Business Central)
// without knowing how the ERP is reached.
//
// Key concepts:
//   - PurchaseOrder: an active order as published by the ERP, with its lines
//   - ArchivedPurchaseOrder: a historical order version, normalized via ToPurchaseOrder
//   - PortalVendorMapping: link between a vendor-portal identity and an ERP vendor number
//   - OrderPdfDocument: the rendered order document, decoded and held in memory only
//   - PurchaseOrderGateway: port implemented by the ERP adapter
//   - VendorNoCache / VerificationAuditRepository: ports for caching and the audit trail
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
