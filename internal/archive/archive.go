// Package archive keeps a copy of every report that was emailed.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// ObjectPutter is the subset of the S3 client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// MessageSender is the subset of the SQS client the archive uses.
type MessageSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Options configures New.
type Options struct {
	Bucket    string
	QueueName string
	Region    string
	Endpoint  string
}

// S3Archive uploads reports to a bucket and optionally announces them on a queue.
type S3Archive struct {
	s3       ObjectPutter
	sqs      MessageSender
	bucket   string
	queueURL string
	now      func() time.Time
}

// ArchivedEvent is the queue message sent after an upload.
type ArchivedEvent struct {
	Bucket     string `json:"bucket"`
	Key        string `json:"key"`
	PatientID  string `json:"patient_id"`
	UploadedAt string `json:"uploaded_at"`
}

// New loads the default AWS configuration and builds the archive. It returns
// nil, nil when no bucket is configured.
func New(ctx context.Context, opts Options) (*S3Archive, error) {
	if opts.Bucket == "" {
		return nil, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	var (
		sqsClient *sqs.Client
		queueURL  string
	)
	if opts.QueueName != "" {
		sqsClient = sqs.NewFromConfig(cfg, func(o *sqs.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
		})
		resp, err := sqsClient.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(opts.QueueName)})
		if err != nil {
			return nil, fmt.Errorf("get queue url %s: %w", opts.QueueName, err)
		}
		queueURL = aws.ToString(resp.QueueUrl)
	}

	a := NewWithClients(s3Client, nil, opts.Bucket, "")
	if sqsClient != nil {
		a.sqs = sqsClient
		a.queueURL = queueURL
	}
	return a, nil
}

// NewWithClients builds an archive over already constructed clients.
// sender may be nil to skip queue announcements.
func NewWithClients(putter ObjectPutter, sender MessageSender, bucket, queueURL string) *S3Archive {
	return &S3Archive{
		s3:       putter,
		sqs:      sender,
		bucket:   bucket,
		queueURL: queueURL,
		now:      time.Now,
	}
}

// Store uploads a report and returns its object key.
func (a *S3Archive) Store(ctx context.Context, patientID, name string, data []byte) (string, error) {
	now := a.now().UTC()
	key := fmt.Sprintf("reports/%s/%s_%s", patientID, now.Format("20060102_150405"), name)

	if _, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
		ACL:         types.ObjectCannedACLPrivate,
	}); err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}

	if a.sqs == nil || a.queueURL == "" {
		return key, nil
	}

	body, err := json.Marshal(ArchivedEvent{
		Bucket:     a.bucket,
		Key:        key,
		PatientID:  patientID,
		UploadedAt: now.Format(time.RFC3339),
	})
	if err != nil {
		return key, fmt.Errorf("marshal archive event: %w", err)
	}
	if _, err := a.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(a.queueURL),
		MessageBody: aws.String(string(body)),
	}); err != nil {
		return key, fmt.Errorf("announce %s: %w", key, err)
	}
	return key, nil
}
