package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/followup"
	"github.com/wolfman30/prospect-pipeline/internal/notify"
	"github.com/wolfman30/prospect-pipeline/internal/observability/metrics"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// BuildEmailSender selects the sender named by EMAIL_PROVIDER.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	switch notify.NormalizeProvider(cfg.EmailProvider) {
	case notify.ProviderSendGrid:
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return sender, nil
	case notify.ProviderSES:
		awsCfg, err := LoadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client := sesv2.NewFromConfig(awsCfg, func(o *sesv2.Options) {
			if cfg.AWSEndpointOverride != "" {
				o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
			}
		})
		logger.Info("email via SES", "region", awsCfg.Region, "endpoint_override", cfg.AWSEndpointOverride != "")
		return notify.NewSESSender(client, notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	default:
		return notify.NewStubEmailSender(logger), nil
	}
}

// LoadAWSConfig resolves region and credentials. Static keys from the
// environment win over the default chain so LocalStack works without a profile.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("bootstrap: load aws config: %w", err)
	}
	return awsCfg, nil
}

// BuildDigestScheduler returns nil when the digest is disabled or has no recipient.
func BuildDigestScheduler(cfg *appconfig.Config, store *prospects.Store, sender notify.EmailSender, m *metrics.PipelineMetrics, loc *time.Location, logger *logging.Logger) (*followup.Scheduler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.DigestEnabled || cfg.DigestRecipient == "" {
		logger.Info("follow-up digest disabled")
		return nil, nil
	}
	digest := followup.NewDigest(store, sender, cfg.DigestRecipient, logger).
		WithTouchGoal(cfg.TouchGoal).
		WithMetrics(m)
	return followup.NewScheduler(cfg.DigestCron, loc, followup.DigestJob(digest), logger)
}
