package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/types"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"

	"github.com/stockyard/warehouse-backend/internal/awssdk"
	"github.com/stockyard/warehouse-backend/internal/utils"
)

var _ resource.Resource = (*backendResource)(nil)
var _ resource.ResourceWithImportState = (*backendResource)(nil)

// NewBackendResource creates the main Terraform resource for this provider.
func NewBackendResource() resource.Resource { return &backendResource{} }

type backendResource struct{}

type backendModel struct {
	ID         types.String `tfsdk:"id"`
	NamePrefix types.String `tfsdk:"name_prefix"`
	Lambda     *LambdaBlock `tfsdk:"lambda"`

	// Outputs
	TableName         types.String `tfsdk:"table_name"`
	TableArn          types.String `tfsdk:"table_arn"`
	LambdaFunctionArn types.String `tfsdk:"lambda_function_arn"`
	LambdaRoleArn     types.String `tfsdk:"lambda_role_arn"`
}

func (r *backendResource) Metadata(_ context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_backend"
}

func (r *backendResource) Schema(_ context.Context, _ resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "Provision the warehouse inventory backend: single-table DynamoDB store and the API handler Lambda with its execution role.",
		Attributes: map[string]schema.Attribute{
			"id":          schema.StringAttribute{Computed: true, PlanModifiers: []planmodifier.String{stringplanmodifier.UseStateForUnknown()}},
			"name_prefix": schema.StringAttribute{Optional: true},
			// Outputs
			"table_name":          schema.StringAttribute{Computed: true},
			"table_arn":           schema.StringAttribute{Computed: true},
			"lambda_function_arn": schema.StringAttribute{Computed: true},
			"lambda_role_arn":     schema.StringAttribute{Computed: true},
		},
		Blocks: map[string]schema.Block{
			"lambda": schema.SingleNestedBlock{
				Attributes: map[string]schema.Attribute{
					"code_dir":    schema.StringAttribute{Optional: true},
					"memory_size": schema.Int64Attribute{Optional: true},
					"timeout":     schema.Int64Attribute{Optional: true},
				},
			},
		},
	}
}

func (r *backendResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var plan backendModel
	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	if resp.Diagnostics.HasError() {
		return
	}

	prefix := strOrDefault(plan.NamePrefix.ValueString(), "warehouse")
	settings, err := resolveLambdaSettings(plan.Lambda)
	if err != nil {
		resp.Diagnostics.AddError("Invalid lambda settings", err.Error())
		return
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx)
	if err != nil {
		resp.Diagnostics.AddError("AWS config error", err.Error())
		return
	}

	ddb := dynamodb.NewFromConfig(cfg)
	tableName, tableArn, err := createAndDescribeTable(ctx, ddb, prefix)
	if err != nil {
		resp.Diagnostics.AddError("Create DynamoDB table failed", err.Error())
		return
	}

	partition := awssdk.PartitionForRegion(cfg.Region)
	roleArn, err := createHandlerRole(ctx, iam.NewFromConfig(cfg), prefix, partition, tableArn)
	if err != nil {
		resp.Diagnostics.AddError("Create IAM role failed", err.Error())
		return
	}

	fnArn, err := createHandlerFunction(ctx, lambda.NewFromConfig(cfg), prefix, roleArn, tableName, settings)
	if err != nil {
		resp.Diagnostics.AddError("Create Lambda failed", err.Error())
		return
	}

	// Outputs
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("id"), types.StringValue(tableName))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("table_name"), types.StringValue(tableName))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("table_arn"), types.StringValue(tableArn))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("lambda_function_arn"), types.StringValue(fnArn))...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("lambda_role_arn"), types.StringValue(roleArn))...)
	if resp.Diagnostics.HasError() {
		return
	}
}

type lambdaSettings struct {
	codeDir    string
	memorySize int64
	timeout    int64
}

func resolveLambdaSettings(plan *LambdaBlock) (lambdaSettings, error) {
	dir := "./build/warehouse-api"
	mem := int64(128)
	timeout := int64(10)
	if plan != nil {
		if !plan.CodeDir.IsNull() {
			dir = plan.CodeDir.ValueString()
		}
		if !plan.MemorySize.IsNull() {
			mem = plan.MemorySize.ValueInt64()
		}
		if !plan.Timeout.IsNull() {
			timeout = plan.Timeout.ValueInt64()
		}
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return lambdaSettings{}, err
		}
		dir = filepath.Join(cwd, dir)
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return lambdaSettings{}, fmt.Errorf("lambda.code_dir %q not found or not a directory", dir)
	}
	return lambdaSettings{codeDir: dir, memorySize: mem, timeout: timeout}, nil
}

func createAndDescribeTable(ctx context.Context, client *dynamodb.Client, prefix string) (tableName string, tableArn string, err error) {
	tableName = fmt.Sprintf("%s-records-%d", prefix, time.Now().Unix())
	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   &tableName,
		BillingMode: dynamodbtypes.BillingModePayPerRequest,
		AttributeDefinitions: []dynamodbtypes.AttributeDefinition{
			{AttributeName: awsString("PK"), AttributeType: dynamodbtypes.ScalarAttributeTypeS},
			{AttributeName: awsString("SK"), AttributeType: dynamodbtypes.ScalarAttributeTypeS},
		},
		KeySchema: []dynamodbtypes.KeySchemaElement{
			{AttributeName: awsString("PK"), KeyType: dynamodbtypes.KeyTypeHash},
			{AttributeName: awsString("SK"), KeyType: dynamodbtypes.KeyTypeRange},
		},
	})
	if err != nil {
		return "", "", err
	}
	desc, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: &tableName})
	if err != nil {
		return "", "", fmt.Errorf("describe table failed for %s: %w", tableName, err)
	}
	if desc.Table == nil || desc.Table.TableArn == nil {
		return "", "", fmt.Errorf("describe table missing TableArn for %s", tableName)
	}
	return tableName, *desc.Table.TableArn, nil
}

func createHandlerRole(ctx context.Context, client *iam.Client, prefix string, partition string, tableArn string) (roleArn string, err error) {
	assume := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":["lambda.amazonaws.com"]},"Action":["sts:AssumeRole"]}]}`
	roleOut, err := client.CreateRole(ctx, &iam.CreateRoleInput{
		AssumeRolePolicyDocument: &assume,
		RoleName:                 awsString(fmt.Sprintf("%s-role-%d", prefix, time.Now().Unix())),
	})
	if err != nil {
		return "", err
	}
	if _, err := client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  roleOut.Role.RoleName,
		PolicyArn: awsString(fmt.Sprintf("arn:%s:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole", partition)),
	}); err != nil {
		return "", fmt.Errorf(
			"attach role policy failed (policy=%s role=%s): %w",
			"AWSLambdaBasicExecutionRole",
			awsStringValue(roleOut.Role.RoleName),
			err,
		)
	}
	tablePolicy := fmt.Sprintf(
		`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":["dynamodb:GetItem","dynamodb:PutItem","dynamodb:UpdateItem","dynamodb:DeleteItem","dynamodb:Scan","dynamodb:Query"],"Resource":%q}]}`,
		tableArn,
	)
	if _, err := client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       roleOut.Role.RoleName,
		PolicyName:     awsString("table-access"),
		PolicyDocument: &tablePolicy,
	}); err != nil {
		return "", fmt.Errorf("put role policy failed (role=%s): %w", awsStringValue(roleOut.Role.RoleName), err)
	}
	return awsStringValue(roleOut.Role.Arn), nil
}

func createHandlerFunction(ctx context.Context, client *lambda.Client, prefix string, roleArn string, tableName string, settings lambdaSettings) (functionArn string, err error) {
	zbuf, err := utils.ZipDir(settings.codeDir)
	if err != nil {
		return "", fmt.Errorf("package lambda code from %s: %w", settings.codeDir, err)
	}
	fnName := fmt.Sprintf("%s-api-%d", prefix, time.Now().Unix())
	out, err := client.CreateFunction(ctx, &lambda.CreateFunctionInput{
		FunctionName:  &fnName,
		Role:          &roleArn,
		Runtime:       lambdatypes.RuntimeProvidedal2023,
		Handler:       awsString("bootstrap"),
		Code:          &lambdatypes.FunctionCode{ZipFile: zbuf},
		Architectures: []lambdatypes.Architecture{lambdatypes.ArchitectureArm64},
		Timeout:       awsInt32(int32(settings.timeout)),
		MemorySize:    awsInt32(int32(settings.memorySize)),
		Environment:   &lambdatypes.Environment{Variables: map[string]string{"table": tableName}},
	})
	if err != nil {
		return "", err
	}
	return awsStringValue(out.FunctionArn), nil
}

func (r *backendResource) Read(_ context.Context, _ resource.ReadRequest, _ *resource.ReadResponse) {
}
func (r *backendResource) Update(_ context.Context, _ resource.UpdateRequest, _ *resource.UpdateResponse) {
}
func (r *backendResource) Delete(_ context.Context, _ resource.DeleteRequest, _ *resource.DeleteResponse) {
}
func (r *backendResource) ImportState(_ context.Context, _ resource.ImportStateRequest, _ *resource.ImportStateResponse) {
}

func awsString(s string) *string { return &s }
func awsInt32(v int32) *int32    { return &v }

// awsStringValue safely dereferences an AWS SDK *string, returning an empty string when nil.
func awsStringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOrDefault(s string, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
