package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/cart"
)

// batchWriteLimit is DynamoDB's per-request cap for BatchWriteItem.
const batchWriteLimit = 25

// DynamoCartStore keeps carts in a DynamoDB table keyed by (user_id, product_id).
type DynamoCartStore struct {
	client    *dynamodb.Client
	tableName string
}

type dynamoCartItem struct {
	UserID    string `dynamodbav:"user_id"`
	ProductID string `dynamodbav:"product_id"`
	Quantity  int    `dynamodbav:"quantity"`
	AddedAt   string `dynamodbav:"added_at"`
}

func NewDynamoCartStore(client *dynamodb.Client, tableName string) *DynamoCartStore {
	return &DynamoCartStore{client: client, tableName: tableName}
}

// NewDynamoClient loads the default AWS credential chain. A non-empty endpoint
// points the client at DynamoDB Local.
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (s *DynamoCartStore) key(userID, productID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":    &types.AttributeValueMemberS{Value: userID},
		"product_id": &types.AttributeValueMemberS{Value: productID},
	}
}

// AddItem uses ADD so concurrent increments on the same line accumulate.
func (s *DynamoCartStore) AddItem(ctx context.Context, userID, productID string, quantity int) (cart.Item, error) {
	result, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.tableName),
		Key:              s.key(userID, productID),
		UpdateExpression: aws.String("ADD quantity :q SET added_at = if_not_exists(added_at, :now)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":   &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return cart.Item{}, fmt.Errorf("failed to add cart item: %w", err)
	}

	var di dynamoCartItem
	if err := attributevalue.UnmarshalMap(result.Attributes, &di); err != nil {
		return cart.Item{}, fmt.Errorf("failed to unmarshal cart item: %w", err)
	}
	return di.toItem(), nil
}

func (s *DynamoCartStore) SetQuantity(ctx context.Context, userID, productID string, quantity int) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 s.key(userID, productID),
		UpdateExpression:    aws.String("SET quantity = :q"),
		ConditionExpression: aws.String("attribute_exists(product_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberN{Value: strconv.Itoa(quantity)},
		},
	})
	return conditionalErr(err, "failed to set cart quantity")
}

func (s *DynamoCartStore) RemoveItem(ctx context.Context, userID, productID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.tableName),
		Key:                 s.key(userID, productID),
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	return conditionalErr(err, "failed to remove cart item")
}

func (s *DynamoCartStore) ClearCart(ctx context.Context, userID string) error {
	items, err := s.ListItems(ctx, userID)
	if err != nil {
		return err
	}

	for start := 0; start < len(items); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(items))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: s.key(userID, item.ProductID)},
			})
		}

		pending := map[string][]types.WriteRequest{s.tableName: requests}
		for len(pending) > 0 {
			out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
			pending = out.UnprocessedItems
		}
	}
	return nil
}

func (s *DynamoCartStore) ListItems(ctx context.Context, userID string) ([]cart.Item, error) {
	items := []cart.Item{}
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query cart: %w", err)
		}
		var rows []dynamoCartItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &rows); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
		}
		for _, row := range rows {
			items = append(items, row.toItem())
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].AddedAt.Before(items[j].AddedAt)
		}
		return items[i].ProductID < items[j].ProductID
	})
	return items, nil
}

func (di dynamoCartItem) toItem() cart.Item {
	addedAt, _ := time.Parse(time.RFC3339Nano, di.AddedAt)
	return cart.Item{ProductID: di.ProductID, Quantity: di.Quantity, AddedAt: addedAt}
}

func conditionalErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return cart.ErrItemNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
