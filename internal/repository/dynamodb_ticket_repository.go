package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// DynamoDBAPI is the subset of *dynamodb.Client used by the repository.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type ticketItem struct {
	ID           string  `dynamodbav:"id"`
	Title        string  `dynamodbav:"title"`
	Description  string  `dynamodbav:"description"`
	Status       string  `dynamodbav:"status"`
	ReporterID   string  `dynamodbav:"reporterId"`
	AssignedToID *string `dynamodbav:"assignedToId,omitempty"`
	Priority     string  `dynamodbav:"priority"`
	Type         string  `dynamodbav:"type"`
	CreatedAt    string  `dynamodbav:"createdAt"`
	UpdatedAt    string  `dynamodbav:"updatedAt"`
}

var ticketAttributes = []string{
	"id", "title", "description", "status", "reporterId", "assignedToId", "priority", "type", "createdAt", "updatedAt",
}

type dynamoTicketRepository struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoTicketRepository instantiates the DynamoDB single-table repository.
func NewDynamoTicketRepository(client DynamoDBAPI, table string) TicketRepository {
	return &dynamoTicketRepository{client: client, table: table}
}

func (r *dynamoTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	item, err := attributevalue.MarshalMap(toItem(ticket))
	if err != nil {
		return fmt.Errorf("marshal ticket: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put ticket: %w", err)
	}
	return nil
}

func (r *dynamoTicketRepository) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       ticketKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return fromAttributes(out.Item)
}

func (r *dynamoTicketRepository) Scan(ctx context.Context) ([]domain.Ticket, error) {
	names := make([]expression.NameBuilder, 0, len(ticketAttributes))
	for _, attr := range ticketAttributes {
		names = append(names, expression.Name(attr))
	}
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(names[0], names[1:]...)).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build projection: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.table),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})

	result := []domain.Ticket{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan tickets: %w", err)
		}
		for _, item := range page.Items {
			ticket, err := fromAttributes(item)
			if err != nil {
				return nil, err
			}
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (r *dynamoTicketRepository) Update(ctx context.Context, id string, changes domain.TicketChanges) (*domain.Ticket, error) {
	expr, err := buildDynamoUpdate(changes)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       ticketKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, translateConditionFailure("update ticket", err)
	}
	return fromAttributes(out.Attributes)
}

func (r *dynamoTicketRepository) Delete(ctx context.Context, id string) error {
	expr, err := expression.NewBuilder().WithCondition(existsCondition()).Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      ticketKey(id),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return translateConditionFailure("delete ticket", err)
	}
	return nil
}

func (r *dynamoTicketRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	return err
}

func existsCondition() expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name("id"))
}

func buildDynamoUpdate(changes domain.TicketChanges) (expression.Expression, error) {
	update := expression.Set(expression.Name("updatedAt"), expression.Value(formatTimestamp(changes.UpdatedAt)))
	if changes.Title != nil {
		update = update.Set(expression.Name("title"), expression.Value(*changes.Title))
	}
	if changes.Description != nil {
		update = update.Set(expression.Name("description"), expression.Value(*changes.Description))
	}
	if changes.Status != nil {
		update = update.Set(expression.Name("status"), expression.Value(string(*changes.Status)))
	}
	if changes.Priority != nil {
		update = update.Set(expression.Name("priority"), expression.Value(string(*changes.Priority)))
	}
	if changes.Type != nil {
		update = update.Set(expression.Name("type"), expression.Value(string(*changes.Type)))
	}
	if changes.SetAssignedTo {
		if changes.AssignedToID == nil {
			update = update.Remove(expression.Name("assignedToId"))
		} else {
			update = update.Set(expression.Name("assignedToId"), expression.Value(*changes.AssignedToID))
		}
	}

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(existsCondition()).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("build update: %w", err)
	}
	return expr, nil
}

func translateConditionFailure(op string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}
	return fmt.Errorf("%s: %w", op, err)
}

func ticketKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func toItem(t *domain.Ticket) ticketItem {
	return ticketItem{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       string(t.Status),
		ReporterID:   t.ReporterID,
		AssignedToID: t.AssignedToID,
		Priority:     string(t.Priority),
		Type:         string(t.Type),
		CreatedAt:    formatTimestamp(t.CreatedAt),
		UpdatedAt:    formatTimestamp(t.UpdatedAt),
	}
}

func fromAttributes(av map[string]types.AttributeValue) (*domain.Ticket, error) {
	var item ticketItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, fmt.Errorf("unmarshal ticket: %w", err)
	}
	createdAt, err := parseTimestamp(item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ticket %s createdAt: %w", item.ID, err)
	}
	updatedAt, err := parseTimestamp(item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("ticket %s updatedAt: %w", item.ID, err)
	}
	return &domain.Ticket{
		ID:           item.ID,
		Title:        item.Title,
		Description:  item.Description,
		Status:       domain.TicketStatus(item.Status),
		ReporterID:   item.ReporterID,
		AssignedToID: item.AssignedToID,
		Priority:     domain.TicketPriority(item.Priority),
		Type:         domain.TicketType(item.Type),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
