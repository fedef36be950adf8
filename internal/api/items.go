package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

type itemSummary struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Quantity int64  `json:"quantity"`
}

// createItem writes a new item row. The quantity arrives as a JSON number
// and is kept as its exact decimal text all the way into storage; callers
// only ever see it back as an integer.
func createItem(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	var body struct {
		ItemID   string      `json:"itemId"`
		ItemName string      `json:"itemName"`
		Quantity json.Number `json:"quantity"`
	}
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}
	if body.Quantity == "" {
		body.Quantity = "0"
	}

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOrEditor); err != nil {
		return nil, err
	}

	existing, err := h.store.Get(ctx, dynamo.WarehousePK(warehouseID), dynamo.ItemSK(body.ItemID))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictf("Item %s already exists in warehouse %s.", body.ItemID, warehouseID)
	}

	row := dynamo.NewItemRow(warehouseID, body.ItemID, body.ItemName, body.Quantity.String())
	if err := h.store.Put(ctx, row); err != nil {
		return nil, err
	}

	h.log.Info("item.created", logging.Fields{"warehouseId": warehouseID, "itemId": body.ItemID})
	return messageBody{Message: fmt.Sprintf("Created item %s in warehouse %s.", body.ItemID, warehouseID)}, nil
}

func listItems(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, anyRole); err != nil {
		return nil, err
	}

	rows, err := h.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	items := []itemSummary{}
	for _, row := range rows {
		pk, err := dynamo.KeyString(row, "PK")
		if err != nil {
			return nil, err
		}
		if pk != dynamo.WarehousePK(warehouseID) {
			continue
		}
		sk, err := dynamo.KeyString(row, "SK")
		if err != nil {
			return nil, err
		}
		if !dynamo.IsItemSK(sk) {
			continue
		}
		quantity, err := dynamo.QuantityValue(row)
		if err != nil {
			return nil, err
		}
		items = append(items, itemSummary{
			ItemID:   dynamo.ItemIDFromSK(sk),
			ItemName: dynamo.ReadString(row, "itemName"),
			Quantity: quantity,
		})
	}
	return items, nil
}

func getItem(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	itemID := req.param("itemId")

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, anyRole); err != nil {
		return nil, err
	}

	row, err := h.store.Get(ctx, dynamo.WarehousePK(warehouseID), dynamo.ItemSK(itemID))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFoundf("Item not found")
	}

	sk, err := dynamo.KeyString(row, "SK")
	if err != nil {
		return nil, err
	}
	quantity, err := dynamo.QuantityValue(row)
	if err != nil {
		return nil, err
	}
	return itemSummary{
		ItemID:   dynamo.ItemIDFromSK(sk),
		ItemName: dynamo.ReadString(row, "itemName"),
		Quantity: quantity,
	}, nil
}

// updateItem changes only the fields the body supplies. A body with neither
// field is answered without touching the store.
func updateItem(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	itemID := req.param("itemId")
	var body struct {
		ItemName *string      `json:"itemName"`
		Quantity *json.Number `json:"quantity"`
	}
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOrEditor); err != nil {
		return nil, err
	}

	var clauses []string
	values := dynamo.Item{}
	if body.ItemName != nil {
		clauses = append(clauses, "itemName = :nm")
		values[":nm"] = dynamo.StringAttribute(*body.ItemName)
	}
	if body.Quantity != nil {
		clauses = append(clauses, "quantity = :qt")
		values[":qt"] = dynamo.NumberAttribute(body.Quantity.String())
	}
	if len(clauses) == 0 {
		return messageBody{Message: "No fields to update."}, nil
	}

	err := h.store.Update(ctx,
		dynamo.WarehousePK(warehouseID), dynamo.ItemSK(itemID),
		"SET "+strings.Join(clauses, ", "),
		values,
	)
	if err != nil {
		return nil, err
	}
	return messageBody{Message: fmt.Sprintf("Item %s updated in warehouse %s.", itemID, warehouseID)}, nil
}

func deleteItem(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	itemID := req.param("itemId")

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOrEditor); err != nil {
		return nil, err
	}

	if err := h.store.Delete(ctx, dynamo.WarehousePK(warehouseID), dynamo.ItemSK(itemID)); err != nil {
		return nil, err
	}

	h.log.Info("item.deleted", logging.Fields{"warehouseId": warehouseID, "itemId": itemID})
	return messageBody{Message: fmt.Sprintf("Deleted item %s from warehouse %s.", itemID, warehouseID)}, nil
}
