// Package queue moves validation requests through SQS. The enqueuer feeds
// admin-triggered work in; the consumer long-polls and hands each message
// to the validation pipeline. Messages that keep failing are shunted to a
// dead-letter queue by the queue's redrive policy, not by this code.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

const (
	// maxBatchSize is SQS's hard cap on entries per SendMessageBatch call.
	maxBatchSize = 10
	// waitTimeSeconds enables long polling on the consumer side.
	waitTimeSeconds = 20
	// visibilityTimeout gives the worker five minutes to finish a message
	// (three provider retries at 1s/5s/30s fit comfortably).
	visibilityTimeout = 300
)

// SQSAPI is the slice of the SQS client the queue layer uses.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// StatusMarker flips a recipient to the queued state once its message is in
// flight.
type StatusMarker interface {
	MarkQueued(ctx context.Context, recipientID string) error
}

// Enqueuer pushes validation requests onto the queue.
type Enqueuer struct {
	client   SQSAPI
	queueURL string
	marker   StatusMarker
}

// NewEnqueuer creates an enqueuer for the given queue.
func NewEnqueuer(client SQSAPI, queueURL string, marker StatusMarker) *Enqueuer {
	return &Enqueuer{client: client, queueURL: queueURL, marker: marker}
}

// Enqueue sends a single validation request and marks the recipient queued.
func (e *Enqueuer) Enqueue(ctx context.Context, req validation.Request) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	_, err = e.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(e.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sending message for recipient %s: %w", req.RecipientID, err)
	}
	if err := e.marker.MarkQueued(ctx, req.RecipientID); err != nil {
		log.Printf("[Queue] Failed to mark recipient %s queued: %v", req.RecipientID, err)
	}
	return nil
}

// EnqueueBatch sends requests in chunks of ten, SQS's batch entry limit. It
// returns the recipient ids that could not be enqueued; the rest are marked
// queued.
func (e *Enqueuer) EnqueueBatch(ctx context.Context, reqs []validation.Request) (failed []string, err error) {
	for start := 0; start < len(reqs); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(reqs) {
			end = len(reqs)
		}
		chunk := reqs[start:end]

		entries := make([]types.SendMessageBatchRequestEntry, 0, len(chunk))
		byEntryID := make(map[string]validation.Request, len(chunk))
		for i, req := range chunk {
			body, merr := json.Marshal(req)
			if merr != nil {
				failed = append(failed, req.RecipientID)
				continue
			}
			id := strconv.Itoa(i)
			byEntryID[id] = req
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(id),
				MessageBody: aws.String(string(body)),
			})
		}
		if len(entries) == 0 {
			continue
		}

		out, berr := e.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(e.queueURL),
			Entries:  entries,
		})
		if berr != nil {
			for _, req := range byEntryID {
				failed = append(failed, req.RecipientID)
			}
			err = fmt.Errorf("sending message batch: %w", berr)
			continue
		}

		for _, f := range out.Failed {
			req, ok := byEntryID[aws.ToString(f.Id)]
			if !ok {
				continue
			}
			log.Printf("[Queue] Batch entry rejected for recipient %s: %s", req.RecipientID, aws.ToString(f.Message))
			failed = append(failed, req.RecipientID)
			delete(byEntryID, aws.ToString(f.Id))
		}
		for _, req := range byEntryID {
			if merr := e.marker.MarkQueued(ctx, req.RecipientID); merr != nil {
				log.Printf("[Queue] Failed to mark recipient %s queued: %v", req.RecipientID, merr)
			}
		}
	}
	return failed, err
}

// Handler processes one dequeued validation request.
type Handler interface {
	Process(ctx context.Context, req validation.Request) (*validation.Result, error)
}

// Consumer long-polls the queue and runs each message through the handler.
type Consumer struct {
	client   SQSAPI
	queueURL string
	handler  Handler
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(client SQSAPI, queueURL string, handler Handler) *Consumer {
	return &Consumer{client: client, queueURL: queueURL, handler: handler}
}

// Run polls until ctx is cancelled. Receive errors back off briefly rather
// than spinning.
func (c *Consumer) Run(ctx context.Context) error {
	log.Printf("[Queue] Consumer started on %s", c.queueURL)
	for {
		if err := ctx.Err(); err != nil {
			log.Printf("[Queue] Consumer stopping: %v", err)
			return err
		}
		if err := c.Poll(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[Queue] Receive failed: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Poll performs one receive cycle: up to ten messages, each processed and
// deleted independently. One bad message never blocks its batch; a failed
// message is simply not deleted, so it reappears after the visibility
// timeout and eventually lands in the dead-letter queue.
func (c *Consumer) Poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: maxBatchSize,
		WaitTimeSeconds:     waitTimeSeconds,
		VisibilityTimeout:   visibilityTimeout,
	})
	if err != nil {
		return fmt.Errorf("receiving messages: %w", err)
	}

	for _, msg := range out.Messages {
		c.processMessage(ctx, msg)
	}
	return nil
}

func (c *Consumer) processMessage(ctx context.Context, msg types.Message) {
	var req validation.Request
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &req); err != nil {
		// Malformed messages can never succeed; delete instead of letting
		// them cycle through redelivery.
		log.Printf("[Queue] Dropping malformed message: %v", err)
		c.deleteMessage(ctx, msg)
		return
	}

	result, err := c.handler.Process(ctx, req)
	if err != nil {
		log.Printf("[Queue] Processing failed for recipient %s: %v", req.RecipientID, err)
		return
	}
	log.Printf("[Queue] Recipient %s validated: %s", req.RecipientID, result.Status)
	c.deleteMessage(ctx, msg)
}

func (c *Consumer) deleteMessage(ctx context.Context, msg types.Message) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("[Queue] Failed to delete message: %v", err)
	}
}
