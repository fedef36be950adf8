package dynamo

import (
	"fmt"
	"strings"
)

const (
	warehousePrefix = "WAREHOUSE#"
	metadataSK      = "METADATA"
)

// WarehousePK returns the partition key shared by every row of a warehouse.
func WarehousePK(warehouseID string) string {
	return fmt.Sprintf("%s%s", warehousePrefix, warehouseID)
}

// MetadataSK returns the sort key of the warehouse metadata row.
func MetadataSK() string { return metadataSK }

// IsWarehousePK reports whether pk addresses a warehouse partition.
func IsWarehousePK(pk string) bool { return strings.HasPrefix(pk, warehousePrefix) }

// WarehouseIDFromPK strips the warehouse marker from a partition key.
func WarehouseIDFromPK(pk string) string { return strings.ReplaceAll(pk, warehousePrefix, "") }

// WarehousePrimaryKey returns the (PK, SK) pair of the metadata row.
func WarehousePrimaryKey(warehouseID string) Item {
	return Item{
		"PK": StringAttribute(WarehousePK(warehouseID)),
		"SK": StringAttribute(MetadataSK()),
	}
}
