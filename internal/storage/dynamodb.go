// Package storage provides the DynamoDB-backed CRM collaborator used when
// the server runs against a real prospect database. Tests and the default
// wiring use the in-memory CRM from internal/provider instead.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/outboundhq/dialer/internal/provider"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// prospectItem is the stored shape of a prospect and its CRM signals.
// Stage tracks the opportunity stage set by UpdateStage.
type prospectItem struct {
	ProspectID string
	Prospect   types.Prospect
	Data       types.CRMData
	Stage      string
}

// activityItem is one stored activity record. Timestamp doubles as the
// range key so activity history stays ordered per prospect.
type activityItem struct {
	ProspectID string
	Timestamp  string
	Record     types.ActivityRecord
}

// DynamoCRM implements provider.CRM using AWS DynamoDB
type DynamoCRM struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoCRM creates a new DynamoDB-backed CRM
func NewDynamoCRM(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoCRM, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	crm := &DynamoCRM{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB CRM initialized")

	return crm, nil
}

// PutProspect stores or replaces a prospect with its CRM signals
func (c *DynamoCRM) PutProspect(ctx context.Context, prospect types.Prospect, data types.CRMData) error {
	item, err := attributevalue.MarshalMap(prospectItem{
		ProspectID: prospect.ID,
		Prospect:   prospect,
		Data:       data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal prospect: %w", err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.config.ProspectsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save prospect: %w", err)
	}
	return nil
}

// inFilter builds an IN condition over string values
func inFilter(name string, values []string) expression.ConditionBuilder {
	rest := make([]expression.OperandBuilder, 0, len(values)-1)
	for _, v := range values[1:] {
		rest = append(rest, expression.Value(v))
	}
	return expression.Name(name).In(expression.Value(values[0]), rest...)
}

// QueryProspects scans the prospects table applying the campaign filters.
// A table-wide scan is acceptable at campaign-launch frequency; a GSI per
// filter dimension would be needed for interactive querying.
func (c *DynamoCRM) QueryProspects(ctx context.Context, filters types.ProspectFilters) ([]types.Prospect, error) {
	var conditions []expression.ConditionBuilder
	if len(filters.Industries) > 0 {
		conditions = append(conditions, inFilter("Data.Industry", filters.Industries))
	}
	if len(filters.Roles) > 0 {
		conditions = append(conditions, inFilter("Prospect.Role", filters.Roles))
	}
	if len(filters.AccountStatus) > 0 {
		conditions = append(conditions, inFilter("Data.AccountStatus", filters.AccountStatus))
	}
	if filters.CompanySizeMin > 0 {
		conditions = append(conditions, expression.Name("Data.CompanySize").GreaterThanEqual(expression.Value(filters.CompanySizeMin)))
	}
	if filters.CompanySizeMax > 0 {
		conditions = append(conditions, expression.Name("Data.CompanySize").LessThanEqual(expression.Value(filters.CompanySizeMax)))
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(c.config.ProspectsTable),
	}
	if len(conditions) > 0 {
		combined := conditions[0]
		for _, cond := range conditions[1:] {
			combined = combined.And(cond)
		}
		expr, err := expression.NewBuilder().WithFilter(combined).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var prospects []types.Prospect
	for {
		result, err := c.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query prospects: %w", err)
		}

		var items []prospectItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prospects: %w", err)
		}
		for _, item := range items {
			prospects = append(prospects, item.Prospect)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return prospects, nil
}

// FetchProspectData returns the stored CRM signals for a prospect.
// Lookup is by CRM id via a filtered scan; a GSI on CRMID would be more
// efficient for large tables.
func (c *DynamoCRM) FetchProspectData(ctx context.Context, crmID string) (types.CRMData, error) {
	filter := expression.Name("Prospect.CRMID").Equal(expression.Value(crmID))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return types.CRMData{}, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := c.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(c.config.ProspectsTable),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return types.CRMData{}, fmt.Errorf("failed to fetch prospect data: %w", err)
	}
	if len(result.Items) == 0 {
		return types.CRMData{}, fmt.Errorf("no CRM data for %s", crmID)
	}

	var item prospectItem
	if err := attributevalue.UnmarshalMap(result.Items[0], &item); err != nil {
		return types.CRMData{}, fmt.Errorf("failed to unmarshal prospect: %w", err)
	}
	return item.Data, nil
}

// LogActivity appends one activity record to the prospect's history
func (c *DynamoCRM) LogActivity(ctx context.Context, record types.ActivityRecord) error {
	item, err := attributevalue.MarshalMap(activityItem{
		ProspectID: record.ProspectID,
		Timestamp:  record.Timestamp.UTC().Format(time.RFC3339Nano),
		Record:     record,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.config.ActivitiesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// UpdateStage sets the opportunity stage on a prospect
func (c *DynamoCRM) UpdateStage(ctx context.Context, prospectID, stage string) error {
	update := expression.Set(expression.Name("Stage"), expression.Value(stage))
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	key, err := attributevalue.MarshalMap(map[string]string{"ProspectID": prospectID})
	if err != nil {
		return fmt.Errorf("failed to marshal key: %w", err)
	}

	_, err = c.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(c.config.ProspectsTable),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to update stage: %w", err)
	}
	return nil
}

// Activities returns the logged activity history for a prospect
func (c *DynamoCRM) Activities(ctx context.Context, prospectID string) ([]types.ActivityRecord, error) {
	keyCond := expression.Key("ProspectID").Equal(expression.Value(prospectID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(c.config.ActivitiesTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}

	var items []activityItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activities: %w", err)
	}
	records := make([]types.ActivityRecord, 0, len(items))
	for _, item := range items {
		records = append(records, item.Record)
	}
	return records, nil
}

// NewCRM creates the appropriate CRM based on configuration. In none mode
// it returns nil and the caller falls back to the in-memory CRM.
func NewCRM(ctx context.Context, logger zerolog.Logger) (provider.CRM, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoCRM(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none)")
		return nil, nil
	}
}
