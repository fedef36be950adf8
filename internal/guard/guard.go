// Package guard decides whether a user may act on a warehouse. The only
// evidence consulted is the warehouse's access row for that user.
package guard

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

// Reason discriminates the two ways an access check can fail.
type Reason int

const (
	// NoAccess means no usable access row exists for the user.
	NoAccess Reason = iota
	// InsufficientRole means an access row exists but its role is not in the allow-list.
	InsufficientRole
)

// Denied is returned when an access check fails. Both reasons map to the
// same HTTP status; only the message differs.
type Denied struct {
	Reason Reason
	Roles  []string
}

func (e *Denied) Error() string {
	if e.Reason == InsufficientRole {
		return fmt.Sprintf("Must have one of %v roles to perform this action.", e.Roles)
	}
	return "No access to this warehouse."
}

// Guard answers access checks against the record store.
type Guard struct {
	store *dynamo.Store
	log   logging.Logger
}

// New builds a Guard over the given store.
func New(store *dynamo.Store, logger logging.Logger) *Guard {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Guard{store: store, log: logger}
}

// CheckAccess point-looks-up the access row for (warehouseID, userID) and
// returns the stored role. With a non-empty allowedRoles, the stored role
// must be a member of the list. Absence of the row, or of its role
// attribute, is NoAccess; there is no default role.
func (g *Guard) CheckAccess(ctx context.Context, warehouseID, userID string, allowedRoles []string) (string, error) {
	row, err := g.store.Get(ctx, dynamo.WarehousePK(warehouseID), dynamo.AccessSK(userID))
	if err != nil {
		return "", err
	}

	role, ok := roleOf(row)
	if !ok {
		g.log.Debug("guard.deny", logging.Fields{"warehouseId": warehouseID, "userId": userID, "reason": "noAccess"})
		return "", &Denied{Reason: NoAccess}
	}
	if len(allowedRoles) > 0 && !contains(allowedRoles, role) {
		g.log.Debug("guard.deny", logging.Fields{"warehouseId": warehouseID, "userId": userID, "reason": "insufficientRole"})
		return "", &Denied{Reason: InsufficientRole, Roles: allowedRoles}
	}
	return role, nil
}

// roleOf extracts the role attribute. A present attribute of a non-string
// type still counts as "has access" for unrestricted checks; it simply can
// never match an allow-list entry.
func roleOf(row dynamo.Item) (string, bool) {
	if row == nil {
		return "", false
	}
	av, ok := row["role"]
	if !ok {
		return "", false
	}
	if s, isString := av.(*types.AttributeValueMemberS); isString {
		return s.Value, true
	}
	return "", true
}

func contains(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
