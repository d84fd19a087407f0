package sns

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/news-api/internal/config"
	"github.com/news-api/internal/infrastructure/awscfg"
)

type publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// CodeTexter delivers one-time codes by SMS through AWS SNS.
type CodeTexter struct {
	client publisher
}

func NewCodeTexter(ctx context.Context, cfg *config.Config) (*CodeTexter, error) {
	awsCfg, err := awscfg.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})
	return &CodeTexter{client: client}, nil
}

func (s *CodeTexter) SendCode(ctx context.Context, to, code string, ttl time.Duration) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(codeMessage(code, ttl)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	})
	if err != nil {
		return fmt.Errorf("publish sms: %w", err)
	}
	return nil
}

func codeMessage(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))
}
