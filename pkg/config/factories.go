package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/elfin-go/elfin/internal/logger"
	"github.com/elfin-go/elfin/pkg/storage/local"
	"github.com/elfin-go/elfin/pkg/storage/s3"
	"github.com/elfin-go/elfin/pkg/volume"
)

// CreateVolume builds an unmounted volume from its configuration,
// constructing the backend adapter selected by Type from the matching
// type-specific option section.
func CreateVolume(ctx context.Context, cfg *VolumeConfig) (*volume.Volume, error) {
	v := &volume.Volume{
		Alias:           cfg.Alias,
		URL:             cfg.URL,
		TmbURL:          cfg.TmbURL,
		ReadOnly:        cfg.ReadOnly,
		Locked:          cfg.Locked,
		ShowOnly:        cfg.ShowOnly,
		MaxUploadSize:   cfg.MaxUploadSize,
		UploadOverwrite: cfg.UploadOverwrite,
		StartPath:       cfg.StartPath,
		TmbSize:         cfg.TmbSize,
		DefaultAccess: volume.Access{
			Read:   cfg.Default.Read,
			Write:  cfg.Default.Write,
			Locked: cfg.Default.Locked,
		},
	}

	for _, o := range cfg.Overrides {
		v.Overrides = append(v.Overrides, volume.AccessOverride{
			Path:   o.Path,
			Read:   o.Read,
			Write:  o.Write,
			Locked: o.Locked,
		})
	}

	var err error
	switch cfg.Type {
	case "local":
		v.Adapter, err = createLocalAdapter(ctx, cfg.Local)
	case "s3":
		v.Adapter, err = createS3Adapter(ctx, cfg.S3)
	default:
		err = fmt.Errorf("unknown volume type: %q", cfg.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("volume %q: %w", cfg.Alias, err)
	}
	return v, nil
}

func createLocalAdapter(ctx context.Context, options map[string]any) (*local.Adapter, error) {
	type LocalAdapterConfig struct {
		Path string `mapstructure:"path"`
	}

	var cfg LocalAdapterConfig
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return nil, fmt.Errorf("decode local adapter config: %w", err)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("local adapter: path is required")
	}

	adapter, err := local.New(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}

	logger.Info("local volume initialized: path=%s", adapter.Root())
	return adapter, nil
}

func createS3Adapter(ctx context.Context, options map[string]any) (*s3.Adapter, error) {
	type S3AdapterConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
	}

	var cfg S3AdapterConfig
	if err := mapstructure.Decode(options, &cfg); err != nil {
		return nil, fmt.Errorf("decode s3 adapter config: %w", err)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 adapter: bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3 adapter: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(cfg.Region))

	// Static credentials when configured, default chain otherwise.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		// Custom endpoints (MinIO, Localstack) need path-style access.
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	adapter, err := s3.New(ctx, s3.Config{
		Client:    client,
		Bucket:    cfg.Bucket,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("s3 volume initialized: bucket=%s region=%s prefix=%s",
		cfg.Bucket, cfg.Region, cfg.KeyPrefix)
	return adapter, nil
}
