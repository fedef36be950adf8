package provider

import (
	"context"

	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// Ensure implementation satisfies expected interfaces
var _ provider.Provider = (*warehouseProvider)(nil)

type warehouseProvider struct {
	version string
}

// New returns a provider factory closure with the given version string.
func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &warehouseProvider{version: version}
	}
}

func (p *warehouseProvider) Metadata(_ context.Context, _ provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "warehouse"
	resp.Version = p.version
}

func (p *warehouseProvider) Schema(_ context.Context, _ provider.SchemaRequest, resp *provider.SchemaResponse) {
	// No provider-level configuration; all config is on the resource
	resp.Schema = schema.Schema{
		Attributes: map[string]schema.Attribute{},
	}
}

func (p *warehouseProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	// Nothing; AWS config is discovered via default chain in the resource implementation
}

func (p *warehouseProvider) Resources(_ context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		NewBackendResource,
	}
}

func (p *warehouseProvider) DataSources(_ context.Context) []func() datasource.DataSource {
	return nil
}

// Common types used in the resource schema
type (
	// LambdaBlock captures optional Lambda configuration inputs.
	LambdaBlock struct {
		CodeDir    types.String `tfsdk:"code_dir"`
		MemorySize types.Int64  `tfsdk:"memory_size"`
		Timeout    types.Int64  `tfsdk:"timeout"`
	}
)
