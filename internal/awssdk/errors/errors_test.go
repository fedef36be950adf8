package errors

import (
	"errors"
	"testing"

	"github.com/aws/smithy-go"
)

func apiErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

func TestClassify(t *testing.T) {
	var conflict *ConflictError
	var retryable *RetryableError
	var op *OpError

	if !errors.As(Classify(apiErr("ConditionalCheckFailedException")), &conflict) {
		t.Fatalf("conditional check should classify as conflict")
	}
	if !errors.As(Classify(apiErr("TransactionCanceledException")), &conflict) {
		t.Fatalf("canceled transaction should classify as conflict")
	}
	if !errors.As(Classify(apiErr("ThrottlingException")), &retryable) {
		t.Fatalf("throttling should classify as retryable")
	}
	if !errors.As(Classify(apiErr("ProvisionedThroughputExceededException")), &retryable) {
		t.Fatalf("throughput should classify as retryable")
	}
	if !errors.As(Classify(apiErr("ValidationException")), &op) {
		t.Fatalf("unknown API errors should classify as op errors")
	}
	if !errors.As(Classify(errors.New("boom")), &op) {
		t.Fatalf("plain errors should classify as op errors")
	}
	if Classify(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestClassify_Unwraps(t *testing.T) {
	got := Classify(apiErr("ThrottlingException"))
	var api smithy.APIError
	if !errors.As(got, &api) || api.ErrorCode() != "ThrottlingException" {
		t.Fatalf("cause not reachable through wrapper: %v", got)
	}
}
