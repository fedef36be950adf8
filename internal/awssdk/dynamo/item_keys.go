package dynamo

import (
	"fmt"
	"strings"
)

const itemPrefix = "ITEM#"

// ItemSK returns the sort key of an item row.
func ItemSK(itemID string) string { return fmt.Sprintf("%s%s", itemPrefix, itemID) }

// IsItemSK reports whether sk addresses an item row.
func IsItemSK(sk string) bool { return strings.HasPrefix(sk, itemPrefix) }

// ItemIDFromSK strips the item marker from a sort key.
func ItemIDFromSK(sk string) string { return strings.ReplaceAll(sk, itemPrefix, "") }

// ItemPrimaryKey returns the (PK, SK) pair of an item row.
func ItemPrimaryKey(warehouseID, itemID string) Item {
	return Item{
		"PK": StringAttribute(WarehousePK(warehouseID)),
		"SK": StringAttribute(ItemSK(itemID)),
	}
}
