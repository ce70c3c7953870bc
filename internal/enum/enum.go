package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending = "PENDING"
	OrderStatusServed  = "SERVED"
	OrderStatusPaid    = "PAID"
)

// ── Roles (CHECK constrained in DB) ──

const (
	UserRoleAdmin      = "ADMIN"
	UserRoleServer     = "SERVER"
	UserRoleKitchen    = "KITCHEN"
	UserRoleAccountant = "ACCOUNTANT"
	UserRoleTablet     = "TABLET"
)

// ── Configurable labels (no DB constraint) ──

const (
	PaymentMethodCash = "CASH"
)

const (
	ExpenseCategoryPurchase = "PURCHASE"
	ExpenseCategorySalary   = "SALARY"
	ExpenseCategoryBill     = "BILL"
	ExpenseCategoryOther    = "OTHER"
)

// ── Bulk purge targets ──

const (
	PurgeKindOrders   = "orders"
	PurgeKindExpenses = "expenses"
	PurgeKindPayments = "payments"
	PurgeKindDishes   = "dishes"
)

// ValidRole reports whether s is a known user role.
func ValidRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleServer, UserRoleKitchen, UserRoleAccountant, UserRoleTablet:
		return true
	}
	return false
}

// ValidExpenseCategory reports whether s is a known expense category.
func ValidExpenseCategory(s string) bool {
	switch s {
	case ExpenseCategoryPurchase, ExpenseCategorySalary, ExpenseCategoryBill, ExpenseCategoryOther:
		return true
	}
	return false
}
