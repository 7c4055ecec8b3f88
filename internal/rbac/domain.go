package rbac

// Roles known to the capability table. Authentication is an external
// collaborator; roles arrive on the request and are only checked here.
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleStorekeeper = "storekeeper"
	RoleSupervisor  = "supervisor"
	RoleCashier     = "cashier"
)

// Operations guarded by the capability table. One constant per mutating
// surface; read-only routes are left open.
const (
	OpMaterialWrite   = "materials.write"
	OpMaterialAdjust  = "materials.adjust"
	OpPurchaseWrite   = "procurement.write"
	OpPurchaseReceive = "procurement.receive"
	OpProcessingWrite = "production.write"
	OpFinishedWrite   = "finishedgoods.write"
	OpSaleWrite       = "sales.write"
	OpSaleReturn      = "sales.return"
	OpMasterdataWrite = "masterdata.write"
	OpWorkforceWrite  = "workforce.write"
	OpExpenseWrite    = "expenses.write"
)

// defaultTable maps role -> allowed operations. Admin is handled separately
// and allows everything.
var defaultTable = map[string][]string{
	RoleManager: {
		OpMaterialWrite, OpMaterialAdjust, OpPurchaseWrite, OpPurchaseReceive,
		OpProcessingWrite, OpFinishedWrite, OpSaleWrite, OpSaleReturn,
		OpMasterdataWrite, OpWorkforceWrite, OpExpenseWrite,
	},
	RoleStorekeeper: {
		OpMaterialWrite, OpMaterialAdjust, OpPurchaseWrite, OpPurchaseReceive,
	},
	RoleSupervisor: {
		OpProcessingWrite, OpFinishedWrite, OpWorkforceWrite,
	},
	RoleCashier: {
		OpSaleWrite, OpSaleReturn,
	},
}
