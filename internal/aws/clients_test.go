package aws

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOptions(t *testing.T) {
	assert.Empty(t, loadOptions(Context{}))

	opts := loadOptions(Context{Profile: "dev", Region: "us-east-1"})
	require.Len(t, opts, 2)

	var lo config.LoadOptions
	for _, opt := range opts {
		require.NoError(t, opt(&lo))
	}
	assert.Equal(t, "dev", lo.SharedConfigProfile)
	assert.Equal(t, "us-east-1", lo.Region)
}

func TestClientsCloudFrontIsLazyAndShared(t *testing.T) {
	clients := NewClientsFromConfig(aws.Config{Region: "us-east-1"})

	first := clients.CloudFront()
	require.NotNil(t, first)
	assert.Same(t, first, clients.CloudFront())
	assert.Equal(t, "us-east-1", clients.Region())
}

func TestContextGetConfigCaches(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", t.TempDir()+"/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", t.TempDir()+"/credentials")

	awsCtx := &Context{Region: "eu-west-1"}
	cfg, err := awsCtx.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, awsCtx.config)
}
