package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
)

// MetadataRow is the single per-warehouse metadata record.
type MetadataRow struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	WarehouseName string `dynamodbav:"warehouseName"`
	CreatedAt     int64  `dynamodbav:"createdAt"`
}

// NewMetadataRow renders the metadata row item for a warehouse.
func NewMetadataRow(warehouseID, warehouseName string, createdAt int64) (Item, error) {
	return attributevalue.MarshalMap(MetadataRow{
		PK:            WarehousePK(warehouseID),
		SK:            MetadataSK(),
		WarehouseName: warehouseName,
		CreatedAt:     createdAt,
	})
}

// AccessRow asserts that a user holds a role within a warehouse. Its presence
// is the sole evidence of membership; absence means no access.
type AccessRow struct {
	PK      string `dynamodbav:"PK"`
	SK      string `dynamodbav:"SK"`
	Role    string `dynamodbav:"role"`
	AddedAt int64  `dynamodbav:"addedAt"`
}

// NewAccessRow renders the access row item granting role to userID.
func NewAccessRow(warehouseID, userID, role string, addedAt int64) (Item, error) {
	return attributevalue.MarshalMap(AccessRow{
		PK:      WarehousePK(warehouseID),
		SK:      AccessSK(userID),
		Role:    role,
		AddedAt: addedAt,
	})
}

// NewItemRow renders an inventory item row. The quantity is the exact decimal
// text taken from the request body; it is stored verbatim as the number
// attribute and truncated to an integer only when read back.
func NewItemRow(warehouseID, itemID, itemName, quantity string) Item {
	return Item{
		"PK":       StringAttribute(WarehousePK(warehouseID)),
		"SK":       StringAttribute(ItemSK(itemID)),
		"itemName": StringAttribute(itemName),
		"quantity": NumberAttribute(quantity),
	}
}

// QuantityValue returns the integral part of a row's quantity attribute,
// 0 when the attribute is absent. A present attribute that is not a number
// is an error so that malformed rows surface instead of reading as zero.
func QuantityValue(it Item) (int64, error) {
	av, ok := it["quantity"]
	if !ok {
		return 0, nil
	}
	n, err := numberValue(av)
	if err != nil {
		return 0, err
	}
	return IntegralPart(n)
}
