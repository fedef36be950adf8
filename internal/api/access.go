package api

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

type accessEntry struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// grantAccess upserts the target user's access row. Granting an existing
// user a new role silently replaces the old one and resets addedAt. The
// role string is stored as supplied; no validation is performed.
func grantAccess(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	var body struct {
		UserID string `json:"userId"`
		Role   string `json:"role"`
	}
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOnly); err != nil {
		return nil, err
	}

	row, err := dynamo.NewAccessRow(warehouseID, body.UserID, body.Role, h.now().Unix())
	if err != nil {
		return nil, err
	}
	if err := h.store.Put(ctx, row); err != nil {
		return nil, err
	}

	h.log.Info("access.granted", logging.Fields{"warehouseId": warehouseID, "userId": body.UserID, "role": body.Role})
	return messageBody{
		Message: fmt.Sprintf("User %s given role '%s' in warehouse %s.", body.UserID, body.Role, warehouseID),
	}, nil
}

// listAccess enumerates the warehouse's access rows via a full-table scan.
// The role attribute is read strictly: an access row without one fails the
// listing rather than reporting a made-up role.
func listAccess(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOnly); err != nil {
		return nil, err
	}

	rows, err := h.store.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := []accessEntry{}
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
		if !dynamo.IsAccessSK(sk) {
			continue
		}
		role, err := requiredString(row, "role")
		if err != nil {
			return nil, err
		}
		entries = append(entries, accessEntry{
			UserID: dynamo.UserIDFromAccessSK(sk),
			Role:   role,
		})
	}
	return entries, nil
}

// revokeAccess deletes the target user's access row. Revoking a user who
// has no row succeeds; the operation is idempotent.
func revokeAccess(ctx context.Context, h *Handler, req *request) (any, error) {
	warehouseID := req.param("warehouseId")
	userID := req.param("userId")

	if _, err := h.guard.CheckAccess(ctx, warehouseID, req.caller, ownerOnly); err != nil {
		return nil, err
	}

	if err := h.store.Delete(ctx, dynamo.WarehousePK(warehouseID), dynamo.AccessSK(userID)); err != nil {
		return nil, err
	}

	h.log.Info("access.revoked", logging.Fields{"warehouseId": warehouseID, "userId": userID})
	return messageBody{
		Message: fmt.Sprintf("Revoked access for user %s in warehouse %s.", userID, warehouseID),
	}, nil
}

func requiredString(row dynamo.Item, name string) (string, error) {
	av, ok := row[name]
	if !ok {
		return "", fmt.Errorf("row is missing required attribute %q", name)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("row attribute %q is not a string", name)
	}
	return s.Value, nil
}
