package models

// Document field names shared by every store backend. The SQL backend maps
// FieldID onto its primary key column.
const (
	FieldID         = "_id"
	FieldStatus     = "status"
	FieldRole       = "role"
	FieldPassword   = "password"
	FieldUsername   = "username"
	FieldCustomerID = "customer_id"
	FieldVendorID   = "vendor_id"
	FieldOrderDate  = "order_date"
	FieldOrderID    = "order_id"
)
