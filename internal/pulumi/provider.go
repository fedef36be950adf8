package provider

import (
	"encoding/json"
	"fmt"

	awsapigatewayv2 "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/apigatewayv2"
	awscognito "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cognito"
	awsdynamodb "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/dynamodb"
	awsiam "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	awslambda "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	awss3 "github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	p "github.com/pulumi/pulumi-go-provider"
	"github.com/pulumi/pulumi-go-provider/infer"
	"github.com/pulumi/pulumi/sdk/v3/go/common/tokens"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// NewProvider exposes construction to allow early sanity checks on the
// embedded route manifest.
func NewProvider() (p.Provider, error) {
	if _, err := loadRoutes(); err != nil {
		var zero p.Provider
		return zero, fmt.Errorf("embedded route manifest is unusable: %w", err)
	}
	return infer.NewProviderBuilder().
		WithComponents(infer.ComponentF(NewWarehouseBackend)).
		Build()
}

// BackendArgs defines the inputs for the component resource.
type BackendArgs struct {
	// Name of the S3 bucket where uploaded images are stored.
	UploadBucketName *string `pulumi:"uploadBucketName,optional"`
	// When true, the table and bucket are retained on delete and protected from deletion.
	RetainOnDelete *bool `pulumi:"retainOnDelete,optional"`
	// Settings for the handler Lambda.
	Lambda *LambdaConfig `pulumi:"lambda,optional"`
}

// LambdaConfig exposes a narrow set of tuning knobs for the handler Lambda.
type LambdaConfig struct {
	// Directory or zip containing the compiled bootstrap binary.
	CodePath   *string `pulumi:"codePath,optional"`
	MemorySize *int    `pulumi:"memorySize,optional"`
	Timeout    *int    `pulumi:"timeout,optional"`
}

// WarehouseBackend is the component implementing the full backend stack:
// user pool, table, upload bucket, handler Lambda, and the HTTP API with a
// JWT authorizer over every route.
type WarehouseBackend struct {
	pulumi.ResourceState

	ApiEndpoint pulumi.StringOutput `pulumi:"apiEndpoint"`

	Cognito CognitoOutputs `pulumi:"cognito"`
	Dynamo  DynamoOutputs  `pulumi:"dynamo"`
	Lambda  LambdaOutputs  `pulumi:"lambda"`
	Storage StorageOutputs `pulumi:"storage"`
}

// CognitoOutputs groups user pool outputs under the `cognito` object.
type CognitoOutputs struct {
	UserPoolId       pulumi.StringOutput `pulumi:"userPoolId"`
	UserPoolClientId pulumi.StringOutput `pulumi:"userPoolClientId"`
}

// DynamoOutputs groups table outputs under the `dynamo` object.
type DynamoOutputs struct {
	TableName pulumi.StringOutput `pulumi:"tableName"`
	TableArn  pulumi.StringOutput `pulumi:"tableArn"`
}

// LambdaOutputs groups handler outputs under the `lambda` object.
type LambdaOutputs struct {
	FunctionArn pulumi.StringOutput `pulumi:"functionArn"`
	RoleArn     pulumi.StringOutput `pulumi:"roleArn"`
}

// StorageOutputs groups upload bucket outputs under the `storage` object.
type StorageOutputs struct {
	BucketName pulumi.StringOutput `pulumi:"bucketName"`
}

// Annotate attaches schema metadata used for provider docs and code generation.
func (c *WarehouseBackend) Annotate(a infer.Annotator) {
	a.Describe(&c, "Provision the warehouse inventory backend: Cognito user pool, DynamoDB table, upload bucket, handler Lambda, and JWT-protected HTTP API.")
	a.SetToken(tokens.ModuleName("warehouse-backend"), tokens.TypeName("WarehouseBackend"))
}

// NewWarehouseBackend is the component constructor used by infer.Component.
func NewWarehouseBackend(
	ctx *pulumi.Context,
	name string,
	args BackendArgs,
	opts ...pulumi.ResourceOption,
) (*WarehouseBackend, error) {
	comp := &WarehouseBackend{}
	const backendType = "warehouse-backend:index:WarehouseBackend"
	if err := ctx.RegisterComponentResource(backendType, name, comp, opts...); err != nil {
		return nil, err
	}

	normalizeBackendArgs(&args)
	childOpts, retOpts := buildChildOptions(comp, opts, *args.RetainOnDelete)

	pool, client, err := createUserPool(ctx, name, childOpts)
	if err != nil {
		return nil, err
	}

	table, err := createTable(ctx, name, args, retOpts)
	if err != nil {
		return nil, err
	}

	bucket, err := createUploadBucket(ctx, name, args, retOpts)
	if err != nil {
		return nil, err
	}

	role, fn, err := createHandlerLambda(ctx, name, args, table, bucket, childOpts)
	if err != nil {
		return nil, err
	}

	api, err := createHTTPAPI(ctx, name, pool, client, fn, childOpts)
	if err != nil {
		return nil, err
	}

	comp.ApiEndpoint = api.ApiEndpoint
	comp.Cognito = CognitoOutputs{UserPoolId: pool.ID().ToStringOutput(), UserPoolClientId: client.ID().ToStringOutput()}
	comp.Dynamo = DynamoOutputs{TableName: table.Name, TableArn: table.Arn}
	comp.Lambda = LambdaOutputs{FunctionArn: fn.Arn, RoleArn: role.Arn}
	comp.Storage = StorageOutputs{BucketName: bucket.Bucket}

	return comp, nil
}

func normalizeBackendArgs(args *BackendArgs) {
	if args.RetainOnDelete == nil {
		b := false
		args.RetainOnDelete = &b
	}
	if args.Lambda == nil {
		args.Lambda = &LambdaConfig{}
	}
}

func buildChildOptions(comp pulumi.Resource, opts []pulumi.ResourceOption, retainOnDelete bool) (childOpts []pulumi.ResourceOption, retainOpts []pulumi.ResourceOption) {
	childOpts = append([]pulumi.ResourceOption{}, opts...)
	childOpts = append(childOpts, pulumi.Parent(comp))
	retainOpts = append([]pulumi.ResourceOption{}, childOpts...)
	if retainOnDelete {
		retainOpts = append(retainOpts, pulumi.RetainOnDelete(true))
	}
	return childOpts, retainOpts
}

func createUserPool(ctx *pulumi.Context, name string, opts []pulumi.ResourceOption) (*awscognito.UserPool, *awscognito.UserPoolClient, error) {
	pool, err := awscognito.NewUserPool(ctx, fmt.Sprintf("%s-userpool", name), &awscognito.UserPoolArgs{}, opts...)
	if err != nil {
		return nil, nil, err
	}
	client, err := awscognito.NewUserPoolClient(ctx, fmt.Sprintf("%s-app-client", name), &awscognito.UserPoolClientArgs{
		UserPoolId: pool.ID(),
		ExplicitAuthFlows: pulumi.ToStringArray([]string{
			"ALLOW_USER_PASSWORD_AUTH",
			"ALLOW_USER_SRP_AUTH",
			"ALLOW_REFRESH_TOKEN_AUTH",
		}),
		SupportedIdentityProviders: pulumi.ToStringArray([]string{"COGNITO"}),
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	return pool, client, nil
}

func createTable(ctx *pulumi.Context, name string, args BackendArgs, opts []pulumi.ResourceOption) (*awsdynamodb.Table, error) {
	targs := &awsdynamodb.TableArgs{
		BillingMode: pulumi.String("PAY_PER_REQUEST"),
		Attributes: awsdynamodb.TableAttributeArray{
			awsdynamodb.TableAttributeArgs{Name: pulumi.String("PK"), Type: pulumi.String("S")},
			awsdynamodb.TableAttributeArgs{Name: pulumi.String("SK"), Type: pulumi.String("S")},
		},
		HashKey:  pulumi.String("PK"),
		RangeKey: pulumi.StringPtr("SK"),
	}
	if args.RetainOnDelete != nil && *args.RetainOnDelete {
		targs.DeletionProtectionEnabled = pulumi.BoolPtr(true)
		targs.PointInTimeRecovery = &awsdynamodb.TablePointInTimeRecoveryArgs{Enabled: pulumi.Bool(true)}
	}
	return awsdynamodb.NewTable(ctx, fmt.Sprintf("%s-table", name), targs, opts...)
}

func createUploadBucket(ctx *pulumi.Context, name string, args BackendArgs, opts []pulumi.ResourceOption) (*awss3.BucketV2, error) {
	bargs := &awss3.BucketV2Args{}
	if args.UploadBucketName != nil {
		bargs.Bucket = pulumi.StringPtr(*args.UploadBucketName)
	}
	return awss3.NewBucketV2(ctx, fmt.Sprintf("%s-uploads", name), bargs, opts...)
}

func createHandlerLambda(ctx *pulumi.Context, name string, args BackendArgs, table *awsdynamodb.Table, bucket *awss3.BucketV2, opts []pulumi.ResourceOption) (*awsiam.Role, *awslambda.Function, error) {
	role, err := awsiam.NewRole(ctx, fmt.Sprintf("%s-role", name), &awsiam.RoleArgs{
		AssumeRolePolicy: pulumi.String(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"Service":["lambda.amazonaws.com"]},"Action":["sts:AssumeRole"]}]}`),
	}, opts...)
	if err != nil {
		return nil, nil, err
	}

	_, _ = awsiam.NewRolePolicyAttachment(ctx, fmt.Sprintf("%s-role-basic", name), &awsiam.RolePolicyAttachmentArgs{
		PolicyArn: pulumi.String("arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"),
		Role:      role.Name,
	}, pulumi.Parent(role))

	if _, err := awsiam.NewRolePolicy(ctx, fmt.Sprintf("%s-role-data", name), &awsiam.RolePolicyArgs{
		Role:   role.Name,
		Policy: dataAccessPolicy(table, bucket),
	}, pulumi.Parent(role)); err != nil {
		return nil, nil, err
	}

	codePath := "./build/warehouse-api"
	if args.Lambda.CodePath != nil {
		codePath = *args.Lambda.CodePath
	}
	memory := 128
	if args.Lambda.MemorySize != nil {
		memory = *args.Lambda.MemorySize
	}
	timeout := 10
	if args.Lambda.Timeout != nil {
		timeout = *args.Lambda.Timeout
	}

	fn, err := awslambda.NewFunction(ctx, fmt.Sprintf("%s-handler", name), &awslambda.FunctionArgs{
		Role:          role.Arn,
		Runtime:       pulumi.String("provided.al2023"),
		Handler:       pulumi.String("bootstrap"),
		Architectures: pulumi.ToStringArray([]string{"arm64"}),
		Timeout:       pulumi.Int(timeout),
		MemorySize:    pulumi.Int(memory),
		Code:          pulumi.NewFileArchive(codePath),
		Environment: &awslambda.FunctionEnvironmentArgs{Variables: pulumi.StringMap{
			"table":  table.Name,
			"bucket": bucket.Bucket,
		}},
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	return role, fn, nil
}

// dataAccessPolicy grants the handler read/write on the table and bucket,
// mirroring the grants the handler relies on at runtime.
func dataAccessPolicy(table *awsdynamodb.Table, bucket *awss3.BucketV2) pulumi.StringOutput {
	return pulumi.All(table.Arn, bucket.Arn).ApplyT(func(vs []any) (string, error) {
		tableArn := vs[0].(string)
		bucketArn := vs[1].(string)
		pol := map[string]any{
			"Version": "2012-10-17",
			"Statement": []map[string]any{
				{
					"Effect": "Allow",
					"Action": []string{
						"dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:UpdateItem",
						"dynamodb:DeleteItem", "dynamodb:Scan", "dynamodb:Query",
						"dynamodb:BatchGetItem", "dynamodb:BatchWriteItem",
					},
					"Resource": tableArn,
				},
				{
					"Effect":   "Allow",
					"Action":   []string{"s3:GetObject", "s3:PutObject", "s3:DeleteObject", "s3:ListBucket"},
					"Resource": []string{bucketArn, bucketArn + "/*"},
				},
			},
		}
		b, err := json.Marshal(pol)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}).(pulumi.StringOutput)
}

func createHTTPAPI(ctx *pulumi.Context, name string, pool *awscognito.UserPool, client *awscognito.UserPoolClient, fn *awslambda.Function, opts []pulumi.ResourceOption) (*awsapigatewayv2.Api, error) {
	api, err := awsapigatewayv2.NewApi(ctx, fmt.Sprintf("%s-api", name), &awsapigatewayv2.ApiArgs{
		ProtocolType: pulumi.String("HTTP"),
	}, opts...)
	if err != nil {
		return nil, err
	}

	authorizer, err := awsapigatewayv2.NewAuthorizer(ctx, fmt.Sprintf("%s-authorizer", name), &awsapigatewayv2.AuthorizerArgs{
		ApiId:           api.ID(),
		AuthorizerType:  pulumi.String("JWT"),
		IdentitySources: pulumi.StringArray{pulumi.String("$request.header.Authorization")},
		JwtConfiguration: &awsapigatewayv2.AuthorizerJwtConfigurationArgs{
			Audiences: pulumi.StringArray{client.ID()},
			Issuer:    pulumi.Sprintf("https://%s", pool.Endpoint),
		},
	}, opts...)
	if err != nil {
		return nil, err
	}

	integration, err := awsapigatewayv2.NewIntegration(ctx, fmt.Sprintf("%s-integration", name), &awsapigatewayv2.IntegrationArgs{
		ApiId:                api.ID(),
		IntegrationType:      pulumi.String("AWS_PROXY"),
		IntegrationUri:       fn.InvokeArn,
		PayloadFormatVersion: pulumi.String("2.0"),
	}, opts...)
	if err != nil {
		return nil, err
	}

	routeKeys, err := loadRoutes()
	if err != nil {
		return nil, err
	}
	for _, rk := range routeKeys {
		_, err := awsapigatewayv2.NewRoute(ctx, fmt.Sprintf("%s-route-%s", name, routeResourceName(rk)), &awsapigatewayv2.RouteArgs{
			ApiId:             api.ID(),
			RouteKey:          pulumi.String(rk),
			Target:            pulumi.Sprintf("integrations/%s", integration.ID()),
			AuthorizationType: pulumi.String("JWT"),
			AuthorizerId:      authorizer.ID(),
		}, opts...)
		if err != nil {
			return nil, err
		}
	}

	if _, err := awslambda.NewPermission(ctx, fmt.Sprintf("%s-invoke", name), &awslambda.PermissionArgs{
		Action:    pulumi.String("lambda:InvokeFunction"),
		Function:  fn.Name,
		Principal: pulumi.String("apigateway.amazonaws.com"),
		SourceArn: pulumi.Sprintf("%s/*/*", api.ExecutionArn),
	}, opts...); err != nil {
		return nil, err
	}

	if _, err := awsapigatewayv2.NewStage(ctx, fmt.Sprintf("%s-stage", name), &awsapigatewayv2.StageArgs{
		ApiId:      api.ID(),
		Name:       pulumi.String("$default"),
		AutoDeploy: pulumi.Bool(true),
	}, opts...); err != nil {
		return nil, err
	}

	return api, nil
}
