package dynamodb

import (
	"context"
	"sort"
	"time"

	"storebot/config"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/memory"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements the catalog and order repositories.
//
// Table requirements:
//   - products: PK id (string)
//   - orders:   PK id (string)
type Store struct {
	ddb           API
	productsTable string
	ordersTable   string
}

var (
	_ repository.CatalogRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
)

// NewStore creates the store over the configured tables.
func NewStore(ddb API, cfg *config.Config) *Store {
	return &Store{
		ddb:           ddb,
		productsTable: tableName(cfg.Storage.DynamoDB.ProductsTable, defaultProductsTable),
		ordersTable:   tableName(cfg.Storage.DynamoDB.OrdersTable, defaultOrdersTable),
	}
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException

	return errors.As(err, &cfe)
}

// scan reads every page of table into items.
func (s *Store) scan(ctx context.Context, input *dynamodb.ScanInput, fn func(map[string]types.AttributeValue) error) error {
	paginator := dynamodb.NewScanPaginator(s.ddb, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, item := range page.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	var products []*entity.Product

	err := s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.productsTable)}, func(av map[string]types.AttributeValue) error {
		var it productItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return err
		}
		products = append(products, fromProductItem(it))

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan products")
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	return products, nil
}

func (s *Store) FindProduct(ctx context.Context, id string) (*entity.Product, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.productsTable),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get product")
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrProductNotFound
	}

	var it productItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, errors.Wrap(err, "failed to decode product")
	}

	return fromProductItem(it), nil
}

func (s *Store) PutProduct(ctx context.Context, product *entity.Product) error {
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		if existing, err := s.FindProduct(ctx, product.ID); err == nil {
			product.CreatedAt = existing.CreatedAt
		} else {
			product.CreatedAt = now
		}
	}
	product.UpdatedAt = now

	av, err := attributevalue.MarshalMap(toProductItem(product))
	if err != nil {
		return errors.Wrap(err, "failed to encode product")
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.productsTable),
		Item:      av,
	})

	return errors.Wrap(err, "failed to put product")
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(s.productsTable),
		Key:                      idKey(id),
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if isConditionFailed(err) {
		return repository.ErrProductNotFound
	}

	return errors.Wrap(err, "failed to delete product")
}

func (s *Store) putOrder(ctx context.Context, order *entity.Order, condition string) error {
	av, err := attributevalue.MarshalMap(toOrderItem(order))
	if err != nil {
		return errors.Wrap(err, "failed to encode order")
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.ordersTable),
		Item:                     av,
		ConditionExpression:      aws.String(condition),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})

	return err
}

func (s *Store) CreateOrder(ctx context.Context, order *entity.Order) error {
	err := s.putOrder(ctx, order, "attribute_not_exists(#id)")
	if isConditionFailed(err) {
		return repository.ErrDuplicateOrder
	}

	return errors.Wrap(err, "failed to create order")
}

func (s *Store) FindOrder(ctx context.Context, id string) (*entity.Order, error) {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.ordersTable),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get order")
	}
	if len(out.Item) == 0 {
		return nil, repository.ErrOrderNotFound
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, errors.Wrap(err, "failed to decode order")
	}

	return fromOrderItem(it), nil
}

// ListOrders scans the table with the filter pushed down, then sorts and
// truncates locally since a scan has no ordering.
func (s *Store) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(s.ordersTable)}

	var conds []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if filter.Status != nil {
		conds = append(conds, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(*filter.Status)}
	}
	if filter.UserID != nil {
		conds = append(conds, "#user_id = :user_id")
		names["#user_id"] = "user_id"
		values[":user_id"] = &types.AttributeValueMemberN{Value: formatInt(*filter.UserID)}
	}
	if len(conds) > 0 {
		input.FilterExpression = aws.String(joinAnd(conds))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var orders []*entity.Order
	err := s.scan(ctx, input, func(av map[string]types.AttributeValue) error {
		var it orderItem
		if err := attributevalue.UnmarshalMap(av, &it); err != nil {
			return err
		}
		orders = append(orders, fromOrderItem(it))

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan orders")
	}

	return memory.ApplyFilter(orders, repository.OrderFilter{Limit: filter.Limit}), nil
}

func (s *Store) UpdateOrder(ctx context.Context, order *entity.Order) error {
	err := s.putOrder(ctx, order, "attribute_exists(#id)")
	if isConditionFailed(err) {
		return repository.ErrOrderNotFound
	}

	return errors.Wrap(err, "failed to update order")
}
