package dynamo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is a shorthand for a DynamoDB item.
type Item = map[string]types.AttributeValue

// StringAttribute renders a string AttributeValue.
func StringAttribute(s string) types.AttributeValue { return &types.AttributeValueMemberS{Value: s} }

// NumberAttribute renders a number AttributeValue from its exact decimal text.
// DynamoDB numbers are decimal strings on the wire, so no float conversion
// happens anywhere on this path.
func NumberAttribute(n string) types.AttributeValue { return &types.AttributeValueMemberN{Value: n} }

// KeyString extracts a key attribute that must be present and of string type.
// Enumeration operations use it so that rows with missing or non-string keys
// fail the whole operation instead of being skipped silently.
func KeyString(it Item, name string) (string, error) {
	av, ok := it[name]
	if !ok {
		return "", fmt.Errorf("row is missing required attribute %q", name)
	}
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("row attribute %q is not a string", name)
	}
	return s.Value, nil
}

// ReadString returns a string attribute value, or "" when the attribute is
// absent or not a string. Payload attributes are read tolerantly.
func ReadString(it Item, name string) string {
	if it == nil {
		return ""
	}
	if s, ok := it[name].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

// ReadInt returns the integral value of a number attribute, or 0 when the
// attribute is absent or unreadable.
func ReadInt(it Item, name string) int64 {
	if it == nil {
		return 0
	}
	n, ok := it[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	v, err := IntegralPart(n.Value)
	if err != nil {
		return 0
	}
	return v
}

func numberValue(av types.AttributeValue) (string, error) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("attribute is not a number")
	}
	return n.Value, nil
}

// IntegralPart truncates a decimal number string toward zero and returns it
// as an integer. "42" -> 42, "3.9" -> 3, "-2.5" -> -2.
func IntegralPart(n string) (int64, error) {
	whole, _, _ := strings.Cut(n, ".")
	if whole == "" || whole == "-" || whole == "+" {
		return 0, nil
	}
	v, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("number %q is not an integral decimal: %w", n, err)
	}
	return v, nil
}
