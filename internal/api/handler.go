// Package api dispatches API Gateway v2 events to the warehouse, access,
// and item operations. Every invocation produces a well-formed JSON
// response; no error escapes to the invoker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/guard"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

// usernameClaim is the verified identity claim populated by the gateway's
// Cognito JWT authorizer. Its value is trusted unconditionally.
const usernameClaim = "cognito:username"

// Handler owns the store and guard handles for the lifetime of the process.
type Handler struct {
	store *dynamo.Store
	guard *guard.Guard
	log   logging.Logger
	now   func() time.Time
}

// New builds a Handler around a store. The guard shares the same store.
func New(store *dynamo.Store, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Handler{
		store: store,
		guard: guard.New(store, logger),
		log:   logger,
		now:   time.Now,
	}
}

// request carries the per-invocation inputs an operation needs.
type request struct {
	caller string
	params map[string]string
	body   []byte
}

func (r *request) param(name string) string { return r.params[name] }

// decodeBody unmarshals the request body into dst. An absent body leaves dst
// at its zero value, matching the "missing field defaults" contract.
func (r *request) decodeBody(dst any) error {
	if len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Handle is the Lambda entry point. The returned error is always nil; all
// failures are encoded into the response.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	status, body := h.dispatch(ctx, event)
	return respond(status, body), nil
}

func (h *Handler) dispatch(ctx context.Context, event events.APIGatewayV2HTTPRequest) (int, any) {
	caller, err := callerIdentity(event)
	if err != nil {
		h.log.Error("api.identity.err", logging.Fields{"routeKey": event.RouteKey, "error": err.Error()})
		return http.StatusInternalServerError, errorBody{Error: err.Error()}
	}

	op, ok := routes[event.RouteKey]
	if !ok {
		return http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Unsupported route: %s", event.RouteKey)}
	}

	req := &request{caller: caller, params: event.PathParameters, body: []byte(event.Body)}
	h.log.Debug("api.dispatch", logging.Fields{"routeKey": event.RouteKey, "caller": caller})

	body, err := op(ctx, h, req)
	if err != nil {
		return h.errorStatus(event.RouteKey, err)
	}
	return http.StatusOK, body
}

// errorStatus maps an operation failure onto the error taxonomy: access
// denials are 403, tagged statuses keep their code, everything else is a
// logged 500.
func (h *Handler) errorStatus(routeKey string, err error) (int, any) {
	var denied *guard.Denied
	if errors.As(err, &denied) {
		return http.StatusForbidden, errorBody{Error: denied.Error()}
	}
	var tagged *statusError
	if errors.As(err, &tagged) {
		return tagged.status, errorBody{Error: tagged.message}
	}
	h.log.Error("api.unhandled", logging.Fields{"routeKey": routeKey, "error": err.Error()})
	return http.StatusInternalServerError, errorBody{Error: err.Error()}
}

// callerIdentity extracts the verified username claim from the request
// context. Forgery is prevented upstream by the gateway authorizer.
func callerIdentity(event events.APIGatewayV2HTTPRequest) (string, error) {
	auth := event.RequestContext.Authorizer
	if auth == nil || auth.JWT == nil {
		return "", errors.New("request context is missing authorizer claims")
	}
	user := auth.JWT.Claims[usernameClaim]
	if user == "" {
		return "", fmt.Errorf("request context is missing the %s claim", usernameClaim)
	}
	return user, nil
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	encoded, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		encoded = []byte(`{"error":"failed to serialize response body"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(encoded),
	}
}
