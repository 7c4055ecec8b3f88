package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckerDefaultTable(t *testing.T) {
	c := NewChecker()

	require.True(t, c.Allow(RoleAdmin, OpSaleWrite))
	require.True(t, c.Allow(RoleAdmin, "anything.at.all"))
	require.True(t, c.Allow(RoleCashier, OpSaleWrite))
	require.True(t, c.Allow(RoleCashier, OpSaleReturn))
	require.False(t, c.Allow(RoleCashier, OpMaterialWrite))
	require.True(t, c.Allow(RoleStorekeeper, OpPurchaseReceive))
	require.False(t, c.Allow(RoleStorekeeper, OpSaleWrite))
	require.False(t, c.Allow("", OpSaleWrite))
	require.False(t, c.Allow("unknown", OpSaleWrite))
}

func TestCheckerNormalisesCase(t *testing.T) {
	c := NewCheckerWithTable(map[string][]string{"Clerk": {"Sales.Write"}})
	require.True(t, c.Allow("clerk", "sales.write"))
	require.True(t, c.Allow("CLERK", "SALES.WRITE"))
}
