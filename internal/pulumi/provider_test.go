package provider

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// testArgs returns BackendArgs pointing at a real (throwaway) code directory
// so archive inputs can be hashed during mocked runs.
func testArgs(t *testing.T) BackendArgs {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bootstrap"), []byte("#!/bin/true\n"), 0o755); err != nil {
		t.Fatalf("write bootstrap: %v", err)
	}
	return BackendArgs{Lambda: &LambdaConfig{CodePath: &dir}}
}

type capturedResource struct {
	Type   string
	Name   string
	Inputs resource.PropertyMap
}

type testMocks struct {
	region    string
	resources []capturedResource
}

func (m *testMocks) NewResource(args pulumi.MockResourceArgs) (string, resource.PropertyMap, error) {
	// Capture the resource
	m.resources = append(m.resources, capturedResource{Type: args.TypeToken, Name: args.Name, Inputs: args.Inputs})
	// Echo inputs as outputs; synthesize an ID
	id := args.Name + "_id"
	out := args.Inputs.Copy()
	switch args.TypeToken {
	case "aws:dynamodb/table:Table":
		out[resource.PropertyKey("arn")] = resource.NewStringProperty("arn:aws:dynamodb:" + m.region + ":123456789012:table/" + id)
		out[resource.PropertyKey("name")] = resource.NewStringProperty(id)
	case "aws:s3/bucketV2:BucketV2":
		out[resource.PropertyKey("arn")] = resource.NewStringProperty("arn:aws:s3:::" + id)
		out[resource.PropertyKey("bucket")] = resource.NewStringProperty(id)
	case "aws:cognito/userPool:UserPool":
		out[resource.PropertyKey("endpoint")] = resource.NewStringProperty("cognito-idp." + m.region + ".amazonaws.com/" + id)
	case "aws:lambda/function:Function":
		out[resource.PropertyKey("arn")] = resource.NewStringProperty("arn:aws:lambda:" + m.region + ":123456789012:function:" + id)
		out[resource.PropertyKey("invokeArn")] = resource.NewStringProperty("arn:aws:apigateway:" + m.region + ":lambda:path/functions/" + id + "/invocations")
		out[resource.PropertyKey("name")] = resource.NewStringProperty(id)
	case "aws:apigatewayv2/api:Api":
		out[resource.PropertyKey("apiEndpoint")] = resource.NewStringProperty("https://" + id + ".execute-api." + m.region + ".amazonaws.com")
		out[resource.PropertyKey("executionArn")] = resource.NewStringProperty("arn:aws:execute-api:" + m.region + ":123456789012:" + id)
	}
	return id, out, nil
}

func (m *testMocks) Call(args pulumi.MockCallArgs) (resource.PropertyMap, error) {
	if strings.Contains(args.Token, "getRegion") {
		return resource.PropertyMap{
			resource.PropertyKey("name"): resource.NewStringProperty(m.region),
		}, nil
	}
	return resource.PropertyMap{}, nil
}

// Basic smoke test that the component can be instantiated with mocks.
func TestBackendConstructs(t *testing.T) {
	t.Parallel()
	args := testArgs(t)
	mocks := &testMocks{region: "us-east-1"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewWarehouseBackend(ctx, "test", args)
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
}

func TestBackend_CreatesOneRoutePerManifestEntry(t *testing.T) {
	t.Parallel()
	want, err := loadRoutes()
	if err != nil {
		t.Fatalf("loadRoutes: %v", err)
	}

	args := testArgs(t)
	mocks := &testMocks{region: "us-east-1"}
	err = pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewWarehouseBackend(ctx, "test", args)
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	seen := map[string]bool{}
	for _, r := range mocks.resources {
		if r.Type != "aws:apigatewayv2/route:Route" {
			continue
		}
		rk, ok := r.Inputs[resource.PropertyKey("routeKey")]
		if !ok {
			t.Fatalf("route %s has no routeKey input", r.Name)
		}
		seen[rk.StringValue()] = true
		if at := r.Inputs[resource.PropertyKey("authorizationType")]; at.StringValue() != "JWT" {
			t.Fatalf("route %s authorizationType = %q, want JWT", r.Name, at.StringValue())
		}
	}
	if len(seen) != len(want) {
		t.Fatalf("created %d distinct routes, want %d", len(seen), len(want))
	}
	for _, rk := range want {
		if !seen[rk] {
			t.Fatalf("route %q not created", rk)
		}
	}
}

func TestBackend_TableKeySchema(t *testing.T) {
	t.Parallel()
	args := testArgs(t)
	mocks := &testMocks{region: "us-east-1"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewWarehouseBackend(ctx, "test", args)
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var table resource.PropertyMap
	for _, r := range mocks.resources {
		if r.Type == "aws:dynamodb/table:Table" {
			table = r.Inputs
		}
	}
	if table == nil {
		t.Fatalf("table not created")
	}
	if got := table[resource.PropertyKey("hashKey")].StringValue(); got != "PK" {
		t.Fatalf("hashKey = %q, want PK", got)
	}
	if got := table[resource.PropertyKey("rangeKey")].StringValue(); got != "SK" {
		t.Fatalf("rangeKey = %q, want SK", got)
	}
	if got := table[resource.PropertyKey("billingMode")].StringValue(); got != "PAY_PER_REQUEST" {
		t.Fatalf("billingMode = %q, want PAY_PER_REQUEST", got)
	}
	if _, ok := table[resource.PropertyKey("deletionProtectionEnabled")]; ok {
		t.Fatalf("deletion protection should not be set by default")
	}
}

func TestBackend_RetainOnDeleteProtectsTable(t *testing.T) {
	t.Parallel()
	retain := true
	args := testArgs(t)
	args.RetainOnDelete = &retain
	mocks := &testMocks{region: "us-east-1"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewWarehouseBackend(ctx, "test", args)
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var table resource.PropertyMap
	for _, r := range mocks.resources {
		if r.Type == "aws:dynamodb/table:Table" {
			table = r.Inputs
		}
	}
	if table == nil {
		t.Fatalf("table not created")
	}
	dp, ok := table[resource.PropertyKey("deletionProtectionEnabled")]
	if !ok || !dp.BoolValue() {
		t.Fatalf("deletionProtectionEnabled not set when retainOnDelete is true")
	}
}

func TestBackend_HandlerEnvironment(t *testing.T) {
	t.Parallel()
	args := testArgs(t)
	mocks := &testMocks{region: "us-east-1"}
	err := pulumi.RunErr(func(ctx *pulumi.Context) error {
		_, err := NewWarehouseBackend(ctx, "test", args)
		return err
	}, pulumi.WithMocks("test", "dev", mocks))
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var fn resource.PropertyMap
	for _, r := range mocks.resources {
		if r.Type == "aws:lambda/function:Function" {
			fn = r.Inputs
		}
	}
	if fn == nil {
		t.Fatalf("handler function not created")
	}
	env, ok := fn[resource.PropertyKey("environment")]
	if !ok {
		t.Fatalf("handler has no environment")
	}
	vars := env.ObjectValue()[resource.PropertyKey("variables")].ObjectValue()
	if _, ok := vars[resource.PropertyKey("table")]; !ok {
		t.Fatalf("handler environment missing \"table\"")
	}
	if _, ok := vars[resource.PropertyKey("bucket")]; !ok {
		t.Fatalf("handler environment missing \"bucket\"")
	}
	if got := fn[resource.PropertyKey("runtime")].StringValue(); got != "provided.al2023" {
		t.Fatalf("runtime = %q, want provided.al2023", got)
	}
}

func TestRouteResourceName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"GET /warehouses":                              "get-warehouses",
		"DELETE /warehouses/{warehouseId}":             "delete-warehouses-warehouseid",
		"PUT /warehouses/{warehouseId}/items/{itemId}": "put-warehouses-warehouseid-items-itemid",
	}
	for in, want := range cases {
		if got := routeResourceName(in); got != want {
			t.Fatalf("routeResourceName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadRoutes(t *testing.T) {
	t.Parallel()
	routes, err := loadRoutes()
	if err != nil {
		t.Fatalf("loadRoutes: %v", err)
	}
	if len(routes) != 13 {
		t.Fatalf("manifest declares %d routes, want 13", len(routes))
	}
	for _, rk := range routes {
		if !strings.Contains(rk, " /") {
			t.Fatalf("malformed route key %q", rk)
		}
	}
}
