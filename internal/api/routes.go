package api

import "context"

// operation is one entry of the closed dispatch set. Each receives the
// already-extracted caller identity, path parameters, and raw body.
type operation func(ctx context.Context, h *Handler, req *request) (any, error)

// Route keys as API Gateway v2 delivers them: "<METHOD> <path-template>".
const (
	routeCreateWarehouse = "POST /warehouses"
	routeListWarehouses  = "GET /warehouses"
	routeGetWarehouse    = "GET /warehouses/{warehouseId}"
	routeUpdateWarehouse = "PUT /warehouses/{warehouseId}"
	routeDeleteWarehouse = "DELETE /warehouses/{warehouseId}"
	routeGrantAccess     = "POST /warehouses/{warehouseId}/access"
	routeListAccess      = "GET /warehouses/{warehouseId}/access"
	routeRevokeAccess    = "DELETE /warehouses/{warehouseId}/access/{userId}"
	routeCreateItem      = "POST /warehouses/{warehouseId}/items"
	routeListItems       = "GET /warehouses/{warehouseId}/items"
	routeGetItem         = "GET /warehouses/{warehouseId}/items/{itemId}"
	routeUpdateItem      = "PUT /warehouses/{warehouseId}/items/{itemId}"
	routeDeleteItem      = "DELETE /warehouses/{warehouseId}/items/{itemId}"
)

// Role allow-lists. An empty list means any access row is enough.
var (
	ownerOnly     = []string{"owner"}
	ownerOrEditor = []string{"owner", "editor"}
	anyRole       []string
)

// routes is the full dispatch table. Anything not listed here is an
// unsupported route.
var routes = map[string]operation{
	routeCreateWarehouse: createWarehouse,
	routeListWarehouses:  listWarehouses,
	routeGetWarehouse:    getWarehouse,
	routeUpdateWarehouse: updateWarehouse,
	routeDeleteWarehouse: deleteWarehouse,
	routeGrantAccess:     grantAccess,
	routeListAccess:      listAccess,
	routeRevokeAccess:    revokeAccess,
	routeCreateItem:      createItem,
	routeListItems:       listItems,
	routeGetItem:         getItem,
	routeUpdateItem:      updateItem,
	routeDeleteItem:      deleteItem,
}
