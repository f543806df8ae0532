// Package storage provides DynamoDB-backed persistence for recipients,
// access codes, and newsletters. All validation-state writes are single
// atomic conditional updates keyed by record id — never read-modify-write.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/skellish-aws/kellish-yir-website/internal/validation"
)

// codeIndex is the GSI on the access-code table keyed by the code string.
const codeIndex = "code-index"

var (
	// ErrNotFound means no record exists for the given key.
	ErrNotFound = errors.New("record not found")
	// ErrCodeUsed means the access code was already redeemed. Terminal.
	ErrCodeUsed = errors.New("access code already used")
	// ErrOverridden means the record's validation state is admin-overridden
	// and automatic validation must not touch it.
	ErrOverridden = errors.New("validation status overridden by admin")
)

// DynamoDBAPI is the slice of the DynamoDB client the store needs.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is the DynamoDB-backed record store.
type Store struct {
	db              DynamoDBAPI
	recipientTable  string
	accessCodeTable string
	newsletterTable string
	now             func() time.Time
}

// New creates a Store over the given tables.
func New(db DynamoDBAPI, recipientTable, accessCodeTable, newsletterTable string) *Store {
	return &Store{
		db:              db,
		recipientTable:  recipientTable,
		accessCodeTable: accessCodeTable,
		newsletterTable: newsletterTable,
		now:             time.Now,
	}
}

// ---------------------------------------------------------------------------
// Recipients
// ---------------------------------------------------------------------------

// CreateRecipient inserts a new recipient. A fresh record always starts in
// the pending validation state.
func (s *Store) CreateRecipient(ctx context.Context, r *Recipient) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.AddressValidationStatus = StatusPending

	av, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("marshaling recipient: %w", err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.recipientTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("putting recipient: %w", err)
	}
	return nil
}

// GetRecipient fetches a recipient by id.
func (s *Store) GetRecipient(ctx context.Context, id string) (*Recipient, error) {
	out, err := s.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.recipientTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("getting recipient %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}
	var r Recipient
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling recipient: %w", err)
	}
	return &r, nil
}

// ListRecipients scans the full recipient table. The list is small (a
// family card list), so pagination beyond Dynamo's own pages is not needed.
func (s *Store) ListRecipients(ctx context.Context) ([]Recipient, error) {
	var recipients []Recipient
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.recipientTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning recipients: %w", err)
		}
		var page []Recipient
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshaling recipients: %w", err)
		}
		recipients = append(recipients, page...)
		if out.LastEvaluatedKey == nil {
			return recipients, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// DeleteRecipient removes a recipient by id.
func (s *Store) DeleteRecipient(ctx context.Context, id string) error {
	_, err := s.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.recipientTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		return fmt.Errorf("deleting recipient %s: %w", id, err)
	}
	return nil
}

// UpdateRecipientAddress applies an admin edit to the raw address fields.
// The edit resets the validation status to pending and clears the stale
// validated fields in the same atomic update.
func (s *Store) UpdateRecipientAddress(ctx context.Context, id string, addr validation.AddressInput) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.recipientTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression: aws.String(
			"SET address1 = :a1, address2 = :a2, city = :city, #st = :state, zipcode = :zip, country = :country, " +
				"addressValidationStatus = :status, addressValidationMessage = :msg, updatedAt = :now " +
				"REMOVE addressValidatedAt, validatedAddress1, validatedAddress2, validatedCity, validatedState, validatedZipcode, validatedCountry"),
		ConditionExpression:      aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{"#st": "state"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a1":      &types.AttributeValueMemberS{Value: addr.Address1},
			":a2":      &types.AttributeValueMemberS{Value: addr.Address2},
			":city":    &types.AttributeValueMemberS{Value: addr.City},
			":state":   &types.AttributeValueMemberS{Value: addr.State},
			":zip":     &types.AttributeValueMemberS{Value: addr.Zipcode},
			":country": &types.AttributeValueMemberS{Value: addr.Country},
			":status":  &types.AttributeValueMemberS{Value: string(StatusPending)},
			":msg":     &types.AttributeValueMemberS{Value: "Address changed, revalidation required"},
			":now":     &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("updating recipient address %s: %w", id, err)
	}
	return nil
}

// MarkQueued transitions a recipient to the queued validation state. Called
// synchronously by the enqueue path so the admin UI reflects queued state
// without waiting for the consumer.
func (s *Store) MarkQueued(ctx context.Context, id string) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.recipientTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression: aws.String(
			"SET addressValidationStatus = :status, addressValidationMessage = :msg"),
		ConditionExpression: aws.String("attribute_exists(id) AND addressValidationStatus <> :overridden"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(StatusQueued)},
			":msg":        &types.AttributeValueMemberS{Value: "Queued for validation"},
			":overridden": &types.AttributeValueMemberS{Value: string(StatusOverridden)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		if ccf, ok := conditionFailure(err); ok {
			if len(ccf.Item) == 0 {
				return ErrNotFound
			}
			return ErrOverridden
		}
		return fmt.Errorf("marking recipient %s queued: %w", id, err)
	}
	return nil
}

// UpdateValidation writes a validation outcome onto the recipient record.
// Status, message, timestamp, and all validated address fields land in one
// UpdateItem call: either the full set is updated or none of it is. An
// admin-overridden record is left untouched.
//
// UpdateValidation implements validation.RecipientStore.
func (s *Store) UpdateValidation(ctx context.Context, id string, result *validation.Result) error {
	expr := "SET addressValidationStatus = :status, addressValidationMessage = :msg, addressValidatedAt = :ts"
	values := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(result.Status)},
		":msg":        &types.AttributeValueMemberS{Value: result.Message},
		":ts":         &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
		":overridden": &types.AttributeValueMemberS{Value: string(StatusOverridden)},
	}
	if va := result.ValidatedAddress; va != nil {
		expr += ", validatedAddress1 = :v1, validatedAddress2 = :v2, validatedCity = :vc, validatedState = :vs, validatedZipcode = :vz, validatedCountry = :vco"
		values[":v1"] = &types.AttributeValueMemberS{Value: va.Address1}
		values[":v2"] = &types.AttributeValueMemberS{Value: va.Address2}
		values[":vc"] = &types.AttributeValueMemberS{Value: va.City}
		values[":vs"] = &types.AttributeValueMemberS{Value: va.State}
		values[":vz"] = &types.AttributeValueMemberS{Value: va.Zipcode}
		values[":vco"] = &types.AttributeValueMemberS{Value: va.Country}
	}

	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.recipientTable),
		Key:                                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:                    aws.String(expr),
		ConditionExpression:                 aws.String("attribute_exists(id) AND addressValidationStatus <> :overridden"),
		ExpressionAttributeValues:           values,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		if ccf, ok := conditionFailure(err); ok {
			if len(ccf.Item) == 0 {
				return ErrNotFound
			}
			return ErrOverridden
		}
		return fmt.Errorf("updating validation for recipient %s: %w", id, err)
	}
	return nil
}

// OverrideValidation force-sets the overridden status, suppressing any
// further automatic validation for the record.
func (s *Store) OverrideValidation(ctx context.Context, id, message string) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.recipientTable),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression: aws.String(
			"SET addressValidationStatus = :status, addressValidationMessage = :msg, addressValidatedAt = :ts"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(StatusOverridden)},
			":msg":    &types.AttributeValueMemberS{Value: message},
			":ts":     &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrNotFound
		}
		return fmt.Errorf("overriding validation for recipient %s: %w", id, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Access codes
// ---------------------------------------------------------------------------

// PutAccessCode inserts a new access code record.
func (s *Store) PutAccessCode(ctx context.Context, rec *AccessCodeRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.CreatedAt = s.now().UTC()

	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshaling access code: %w", err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.accessCodeTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("putting access code: %w", err)
	}
	return nil
}

// GetAccessCodeByCode looks up a code via the code GSI. The code must
// already be normalized (uppercase, no whitespace).
func (s *Store) GetAccessCodeByCode(ctx context.Context, code string) (*AccessCodeRecord, error) {
	out, err := s.db.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.accessCodeTable),
		IndexName:                aws.String(codeIndex),
		KeyConditionExpression:   aws.String("#code = :code"),
		ExpressionAttributeNames: map[string]string{"#code": "code"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("querying access code: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, ErrNotFound
	}
	var rec AccessCodeRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling access code: %w", err)
	}
	return &rec, nil
}

// MarkAccessCodeUsed redeems a code: a single conditional update from
// used=false to used=true. Once used, a code never transitions back; a
// second redemption attempt gets ErrCodeUsed.
func (s *Store) MarkAccessCodeUsed(ctx context.Context, codeID, usedBy string) error {
	_, err := s.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.accessCodeTable),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: codeID}},
		UpdateExpression:    aws.String("SET used = :true, usedAt = :ts, usedBy = :by"),
		ConditionExpression: aws.String("attribute_exists(id) AND used = :false"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true":  &types.AttributeValueMemberBOOL{Value: true},
			":false": &types.AttributeValueMemberBOOL{Value: false},
			":ts":    &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)},
			":by":    &types.AttributeValueMemberS{Value: usedBy},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return ErrCodeUsed
		}
		return fmt.Errorf("marking access code %s used: %w", codeID, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Newsletters
// ---------------------------------------------------------------------------

// CreateNewsletter inserts a yearly issue.
func (s *Store) CreateNewsletter(ctx context.Context, n *Newsletter) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := s.now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	av, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshaling newsletter: %w", err)
	}
	_, err = s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.newsletterTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("putting newsletter: %w", err)
	}
	return nil
}

// ListNewsletters scans all issues.
func (s *Store) ListNewsletters(ctx context.Context) ([]Newsletter, error) {
	out, err := s.db.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.newsletterTable),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning newsletters: %w", err)
	}
	var issues []Newsletter
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &issues); err != nil {
		return nil, fmt.Errorf("unmarshaling newsletters: %w", err)
	}
	return issues, nil
}

func isConditionFailed(err error) bool {
	_, ok := conditionFailure(err)
	return ok
}

// conditionFailure extracts the conditional-check failure, if any. Callers
// that request ALL_OLD return values can inspect the failed item to tell a
// missing record (empty item) from one that failed a status condition.
func conditionFailure(err error) (*types.ConditionalCheckFailedException, bool) {
	var ccf *types.ConditionalCheckFailedException
	ok := errors.As(err, &ccf)
	return ccf, ok
}
