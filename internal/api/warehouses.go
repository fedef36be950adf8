package api

import (
	"context"
	"fmt"

	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

type warehouseSummary struct {
	WarehouseID   string `json:"warehouseId"`
	WarehouseName string `json:"warehouseName"`
	CreatedAt     int64  `json:"createdAt"`
}

type createWarehouseResponse struct {
	Message     string `json:"message"`
	WarehouseID string `json:"warehouseId"`
}

// createWarehouse writes the metadata row and seeds the creator's owner
// access row. This is the only mechanism that establishes ownership. The
// two writes are not atomic; a failure in between leaves an ownerless
// warehouse, an accepted inherited risk.
func createWarehouse(ctx context.Context, h *Handler, req *request) (any, error) {
	var body struct {
		WarehouseID   string `json:"warehouseId"`
		WarehouseName string `json:"warehouseName"`
	}
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	existing, err := h.store.Get(ctx, dynamo.WarehousePK(body.WarehouseID), dynamo.MetadataSK())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, conflictf("Warehouse %s already exists.", body.WarehouseID)
	}

	createdAt := h.now().Unix()
	metadata, err := dynamo.NewMetadataRow(body.WarehouseID, body.WarehouseName, createdAt)
	if err != nil {
		return nil, err
	}
	if err := h.store.Put(ctx, metadata); err != nil {
		return nil, err
	}

	ownerRow, err := dynamo.NewAccessRow(body.WarehouseID, req.caller, "owner", createdAt)
	if err != nil {
		return nil, err
	}
	if err := h.store.Put(ctx, ownerRow); err != nil {
		return nil, err
	}

	h.log.Info("warehouse.created", logging.Fields{"warehouseId": body.WarehouseID, "owner": req.caller})
	return createWarehouseResponse{
		Message:     fmt.Sprintf("Created warehouse %s.", body.WarehouseID),
		WarehouseID: body.WarehouseID,
	}, nil
}

// listWarehouses scans the whole table and keeps the metadata rows of every
// warehouse where the caller holds an access row. The scan-and-filter shape
// is intentional; switching to a key-prefix query would change how
// malformed rows and enumeration order are observed.
func listWarehouses(ctx context.Context, h *Handler, req *request) (any, error) {
	rows, err := h.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	accessible := map[string]bool{}
	for _, row := range rows {
		sk, err := dynamo.KeyString(row, "SK")
		if err != nil {
			return nil, err
		}
		if sk != dynamo.AccessSK(req.caller) {
			continue
		}
		pk, err := dynamo.KeyString(row, "PK")
		if err != nil {
			return nil, err
		}
		if dynamo.IsWarehousePK(pk) {
			accessible[dynamo.WarehouseIDFromPK(pk)] = true
		}
	}

	results := []warehouseSummary{}
	for _, row := range rows {
		sk, err := dynamo.KeyString(row, "SK")
		if err != nil {
			return nil, err
		}
		if sk != dynamo.MetadataSK() {
			continue
		}
		pk, err := dynamo.KeyString(row, "PK")
		if err != nil {
			return nil, err
		}
		id := dynamo.WarehouseIDFromPK(pk)
		if !accessible[id] {
			continue
		}
		results = append(results, warehouseSummary{
			WarehouseID:   id,
			WarehouseName: dynamo.ReadString(row, "warehouseName"),
			CreatedAt:     dynamo.ReadInt(row, "createdAt"),
		})
	}
	return results, nil
}

func getWarehouse(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, anyRole); err != nil {
		return nil, err
	}

	row, err := h.store.Get(ctx, dynamo.WarehousePK(warehouseID), dynamo.MetadataSK())
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, notFoundf("Warehouse not found")
	}
	return warehouseSummary{
		WarehouseID:   warehouseID,
		WarehouseName: dynamo.ReadString(row, "warehouseName"),
		CreatedAt:     dynamo.ReadInt(row, "createdAt"),
	}, nil
}

// updateWarehouse renames a warehouse. UpdateItem upserts, so renaming a
// nonexistent warehouse silently creates a bare metadata row.
func updateWarehouse(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	var body struct {
		WarehouseName string `json:"warehouseName"`
	}
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOnly); err != nil {
		return nil, err
	}

	err := h.store.Update(ctx,
		dynamo.WarehousePK(warehouseID), dynamo.MetadataSK(),
		"SET warehouseName = :wn",
		dynamo.Item{":wn": dynamo.StringAttribute(body.WarehouseName)},
	)
	if err != nil {
		return nil, err
	}
	return messageBody{Message: fmt.Sprintf("Warehouse %s updated.", warehouseID)}, nil
}

// deleteWarehouse cascades: the metadata row, every access row, and every
// item row sharing the partition key are removed one at a time. There is no
// atomicity across the set; rows created mid-scan can survive.
func deleteWarehouse(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOnly); err != nil {
		return nil, err
	}

	rows, err := h.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}
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
		if err := h.store.Delete(ctx, pk, sk); err != nil {
			return nil, err
		}
	}

	h.log.Info("warehouse.deleted", logging.Fields{"warehouseId": warehouseID})
	return messageBody{Message: fmt.Sprintf("Warehouse %s and all related records deleted.", warehouseID)}, nil
}
