package dynamo

import (
	"fmt"
	"strings"
)

const accessPrefix = "ACCESS#"

// AccessSK returns the sort key of a user's access row.
func AccessSK(userID string) string { return fmt.Sprintf("%s%s", accessPrefix, userID) }

// IsAccessSK reports whether sk addresses an access row.
func IsAccessSK(sk string) bool { return strings.HasPrefix(sk, accessPrefix) }

// UserIDFromAccessSK strips the access marker from a sort key.
func UserIDFromAccessSK(sk string) string { return strings.ReplaceAll(sk, accessPrefix, "") }

// AccessPrimaryKey returns the (PK, SK) pair of a user's access row.
func AccessPrimaryKey(warehouseID, userID string) Item {
	return Item{
		"PK": StringAttribute(WarehousePK(warehouseID)),
		"SK": StringAttribute(AccessSK(userID)),
	}
}
