package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/stockyard/warehouse-backend/internal/api"
	"github.com/stockyard/warehouse-backend/internal/awssdk"
	"github.com/stockyard/warehouse-backend/internal/awssdk/dynamo"
	"github.com/stockyard/warehouse-backend/internal/utils/logging"
)

// tableEnv names the backing table; provisioning sets it on the function.
const tableEnv = "table"

func main() {
	logger := logging.NewJSONLogger(os.Stdout)

	handler, err := buildHandler(context.Background(), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lambda.Start(handler.Handle)
}

// buildHandler constructs the store client once; it is reused across every
// invocation of this execution environment.
func buildHandler(ctx context.Context, logger logging.Logger) (*api.Handler, error) {
	table := os.Getenv(tableEnv)
	if table == "" {
		return nil, fmt.Errorf("required environment variable %q is not set", tableEnv)
	}

	cfg, err := awssdk.LoadDefault(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	store := dynamo.NewStore(dynamodb.NewFromConfig(cfg), table, logger)
	logger.Info("startup", logging.Fields{"table": table})
	return api.New(store, logger), nil
}
