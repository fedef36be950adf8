package provider

import (
	"os"
	"testing"

	"github.com/hashicorp/terraform-plugin-framework/providerserver"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-go/tfprotov6"
	tftest "github.com/hashicorp/terraform-plugin-testing/helper/resource"
)

func TestAcc_Backend_basic(t *testing.T) {
	if os.Getenv("TF_ACC") == "" {
		t.Skip("set TF_ACC to run acceptance tests (requires AWS credentials)")
	}
	cfg := `
provider "warehouse" {}
resource "warehouse_backend" "test" {
  lambda {
    code_dir = "../../build/warehouse-api"
  }
}
`
	tftest.Test(t, tftest.TestCase{
		ProtoV6ProviderFactories: map[string]func() (tfprotov6.ProviderServer, error){
			"warehouse": providerserver.NewProtocol6WithError(New("dev")()),
		},
		Steps: []tftest.TestStep{{
			Config: cfg,
			Check: tftest.ComposeAggregateTestCheckFunc(
				tftest.TestCheckResourceAttrSet("warehouse_backend.test", "table_name"),
				tftest.TestCheckResourceAttrSet("warehouse_backend.test", "lambda_function_arn"),
			),
		}},
	})
}

func TestResolveLambdaSettings_Defaults(t *testing.T) {
	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(cwd)
	if err := os.MkdirAll("build/warehouse-api", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := resolveLambdaSettings(nil)
	if err != nil {
		t.Fatalf("resolveLambdaSettings: %v", err)
	}
	if got.memorySize != 128 || got.timeout != 10 {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestResolveLambdaSettings_MissingDir(t *testing.T) {
	plan := &LambdaBlock{CodeDir: types.StringValue("/definitely/does/not/exist")}
	if _, err := resolveLambdaSettings(plan); err == nil {
		t.Fatalf("expected error for missing code_dir")
	}
}
