package queue

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/cyphera/credit-ledger/internal/apperr"
	"github.com/cyphera/credit-ledger/internal/types"
)

// SQSQueue is the deployed-mode implementation, grounded on
// cmd/webhook-receiver/main.go's queueWebhookEvent SendMessage call and
// cmd/webhook-processor/main.go's SQS-attribute extraction.
type SQSQueue struct {
	client   *sqs.Client
	queueURL string
}

func NewSQSQueue(client *sqs.Client, queueURL string) *SQSQueue {
	return &SQSQueue{client: client, queueURL: queueURL}
}

var _ Queue = (*SQSQueue)(nil)

func (q *SQSQueue) Enqueue(ctx context.Context, event types.WebhookEvent) error {
	body, err := marshal(event)
	if err != nil {
		return err
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"Provider": {
				StringValue: aws.String(event.Provider),
				DataType:    aws.String("String"),
			},
			"EventType": {
				StringValue: aws.String(string(event.Kind)),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return apperr.ServiceUnavailable("sending webhook event to sqs", err)
	}
	return nil
}

func (q *SQSQueue) Receive(ctx context.Context, max int) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.queueURL),
		MaxNumberOfMessages: int32(max),
		WaitTimeSeconds:     10,
		MessageAttributeNames: []string{"Provider", "EventType"},
	})
	if err != nil {
		return nil, apperr.ServiceUnavailable("receiving from sqs", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		event, err := unmarshal([]byte(*m.Body))
		if err != nil {
			return nil, err
		}
		msg := Message{ReceiptHandle: *m.ReceiptHandle, Event: event}
		if attr, ok := m.MessageAttributes["Provider"]; ok && attr.StringValue != nil {
			msg.Provider = *attr.StringValue
		}
		if attr, ok := m.MessageAttributes["EventType"]; ok && attr.StringValue != nil {
			msg.EventType = *attr.StringValue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DecodeSQSRecord converts one events.SQSMessage from a Lambda-triggered
// invocation into a Message, the same shape Receive produces for the
// long-running poll loop so Reconciler.RunBatch doesn't need to know which
// path the message arrived on.
func DecodeSQSRecord(record events.SQSMessage) (Message, error) {
	event, err := unmarshal([]byte(record.Body))
	if err != nil {
		return Message{}, err
	}
	msg := Message{ReceiptHandle: record.ReceiptHandle, Event: event}
	if attr, ok := record.MessageAttributes["Provider"]; ok && attr.StringValue != nil {
		msg.Provider = *attr.StringValue
	}
	if attr, ok := record.MessageAttributes["EventType"]; ok && attr.StringValue != nil {
		msg.EventType = *attr.StringValue
	}
	return msg, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return apperr.ServiceUnavailable("deleting sqs message", err)
	}
	return nil
}
