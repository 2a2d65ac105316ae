package mongodb

import (
	"context"
	"errors"
	"fmt"

	"civicdesk/internal/conf"
	"civicdesk/internal/dao/fields"
	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const topActorsLimit = 10

// Server error codes handled by EnsureIndexes.
const (
	codeNamespaceNotFound     = 26
	codeIndexNotFound         = 27
	codeIndexOptionsConflict  = 85
	codeIndexKeySpecsConflict = 86
)

func NewAuditLogDAO(db *mongo.Database, cfg *conf.AuditConfig, logger *zap.Logger) *AuditLogDAO {
	return &AuditLogDAO{
		collection: db.Collection(CollectionAuditLogs),
		cfg:        cfg,
		clock:      newMonotonicClock(),
		logger:     logger.Named("AuditLogDAO"),
	}
}

type AuditLogDAO struct {
	collection *mongo.Collection
	cfg        *conf.AuditConfig
	clock      *monotonicClock
	logger     *zap.Logger
}

// Insert stores a copy of log with a fresh id and a store-assigned created_at.
func (d *AuditLogDAO) Insert(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	record := *log
	record.ID = primitive.NewObjectID()
	record.CreatedAt = d.clock.Next()

	if _, err := d.collection.InsertOne(ctx, &record); err != nil {
		d.logger.Error("Insert: InsertOne failed", zap.Error(err),
			zap.String("action", record.Action), zap.Stringer("actorID", record.ActorID))
		return nil, err
	}
	return &record, nil
}

func (d *AuditLogDAO) Find(ctx context.Context, params *repository.FindAuditLogsParams) ([]*models.AuditLog, int64, error) {
	filter := buildAuditFilter(params.Filter)

	total, err := d.collection.CountDocuments(ctx, filter)
	if err != nil {
		d.logger.Error("Find: CountDocuments failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	if total == 0 || int64(params.Offset) >= total {
		return []*models.AuditLog{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{fields.FieldCreatedAt, -1}, {fields.FieldObjectId, -1}}).
		SetSkip(int64(params.Offset)).
		SetLimit(int64(params.Limit))

	cursor, err := d.collection.Find(ctx, filter, opts)
	if err != nil {
		d.logger.Error("Find: Find failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	logs := make([]*models.AuditLog, 0, params.Limit)
	if err = cursor.All(ctx, &logs); err != nil {
		d.logger.Error("Find: cursor.All failed", zap.Error(err), zap.Any("filter", filter))
		return nil, 0, err
	}

	return logs, total, nil
}

func (d *AuditLogDAO) DeleteWhere(ctx context.Context, filter *repository.AuditLogFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, ErrEmptyPredicate
	}

	query := buildAuditFilter(filter)
	res, err := d.collection.DeleteMany(ctx, query)
	if err != nil {
		d.logger.Error("DeleteWhere: DeleteMany failed", zap.Error(err), zap.Any("filter", query))
		return 0, err
	}
	return res.DeletedCount, nil
}

func (d *AuditLogDAO) CountGroupedBy(ctx context.Context, dimension repository.AuditDimension, tr repository.TimeRange) ([]dto.GroupCount, error) {
	group, err := groupStages(dimension)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{}
	if match := timeRangeMatch(tr); match != nil {
		pipeline = append(pipeline, bson.D{{"$match", match}})
	}
	pipeline = append(pipeline, group...)

	cursor, err := d.collection.Aggregate(ctx, pipeline)
	if err != nil {
		d.logger.Error("CountGroupedBy: Aggregate failed", zap.Error(err), zap.String("dimension", string(dimension)))
		return nil, err
	}

	res := make([]dto.GroupCount, 0)
	if err = cursor.All(ctx, &res); err != nil {
		d.logger.Error("CountGroupedBy: cursor.All failed", zap.Error(err), zap.String("dimension", string(dimension)))
		return nil, err
	}
	return res, nil
}

type statisticsFacet struct {
	ByAction     []dto.GroupCount `bson:"byAction"`
	ByTargetType []dto.GroupCount `bson:"byTargetType"`
	TopActors    []dto.ActorCount `bson:"topActors"`
	Total        []struct {
		Count int64 `bson:"count"`
	} `bson:"total"`
}

// Statistics computes all breakdowns of the trail in one $facet aggregation.
func (d *AuditLogDAO) Statistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error) {
	byAction, _ := groupStages(repository.DimensionAction)
	byTargetType, _ := groupStages(repository.DimensionTargetType)

	pipeline := mongo.Pipeline{}
	if match := timeRangeMatch(tr); match != nil {
		pipeline = append(pipeline, bson.D{{"$match", match}})
	}
	pipeline = append(pipeline, bson.D{{"$facet", bson.D{
		{"byAction", byAction},
		{"byTargetType", byTargetType},
		{"topActors", bson.A{
			// Newest first so $first picks the latest display-name snapshot.
			bson.D{{"$sort", bson.D{{fields.FieldCreatedAt, -1}}}},
			bson.D{{"$group", bson.D{
				{"_id", "$" + fields.FieldAuditActorID},
				{fields.FieldAuditActorDisplayName, bson.D{{"$first", "$" + fields.FieldAuditActorDisplayName}}},
				{"count", bson.D{{"$sum", 1}}},
			}}},
			bson.D{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
			bson.D{{"$limit", topActorsLimit}},
		}},
		{"total", bson.A{bson.D{{"$count", "count"}}}},
	}}})

	cursor, err := d.collection.Aggregate(ctx, pipeline)
	if err != nil {
		d.logger.Error("Statistics: Aggregate failed", zap.Error(err))
		return nil, err
	}

	var facets []statisticsFacet
	if err = cursor.All(ctx, &facets); err != nil {
		d.logger.Error("Statistics: cursor.All failed", zap.Error(err))
		return nil, err
	}

	stats := &dto.AuditStatistics{
		ByAction:     []dto.GroupCount{},
		ByTargetType: []dto.GroupCount{},
		TopActors:    []dto.ActorCount{},
	}
	if len(facets) == 0 {
		return stats, nil
	}

	f := facets[0]
	if f.ByAction != nil {
		stats.ByAction = f.ByAction
	}
	if f.ByTargetType != nil {
		stats.ByTargetType = f.ByTargetType
	}
	if f.TopActors != nil {
		stats.TopActors = f.TopActors
	}
	if len(f.Total) > 0 {
		stats.TotalCount = f.Total[0].Count
	}
	return stats, nil
}

// EnsureIndexes creates the query indexes and reconciles the TTL index with the configured horizon.
func (d *AuditLogDAO) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{fields.FieldAuditActorID, 1}}},
		{Keys: bson.D{{fields.FieldAuditAction, 1}}},
		{Keys: bson.D{{fields.FieldAuditTargetType, 1}, {fields.FieldAuditTargetID, 1}}},
		{Keys: bson.D{{fields.FieldCreatedAt, -1}}},
	}
	if _, err := d.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		d.logger.Error("EnsureIndexes: CreateMany failed", zap.Error(err))
		return fmt.Errorf("create audit indexes: %w", err)
	}

	if d.cfg != nil && !d.cfg.TTLEnabled {
		return d.dropTTLIndex(ctx)
	}
	return d.ensureTTLIndex(ctx)
}

func (d *AuditLogDAO) ensureTTLIndex(ctx context.Context) error {
	expireAfter := int32(d.cfg.Retention().Seconds())

	_, err := d.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{fields.FieldCreatedAt, 1}},
		Options: options.Index().SetName(indexAuditTTL).SetExpireAfterSeconds(expireAfter),
	})
	if err == nil {
		return nil
	}

	var cmdErr mongo.CommandError
	if !errors.As(err, &cmdErr) || (cmdErr.Code != codeIndexOptionsConflict && cmdErr.Code != codeIndexKeySpecsConflict) {
		d.logger.Error("ensureTTLIndex: CreateOne failed", zap.Error(err))
		return fmt.Errorf("create audit ttl index: %w", err)
	}

	// The index exists with another horizon; change it in place.
	cmd := bson.D{
		{"collMod", d.collection.Name()},
		{"index", bson.D{
			{"name", indexAuditTTL},
			{"expireAfterSeconds", expireAfter},
		}},
	}
	if err := d.collection.Database().RunCommand(ctx, cmd).Err(); err != nil {
		d.logger.Error("ensureTTLIndex: collMod failed", zap.Error(err))
		return fmt.Errorf("update audit ttl index: %w", err)
	}
	d.logger.Info("ensureTTLIndex: retention horizon updated", zap.Int32("expireAfterSeconds", expireAfter))
	return nil
}

func (d *AuditLogDAO) dropTTLIndex(ctx context.Context) error {
	_, err := d.collection.Indexes().DropOne(ctx, indexAuditTTL)
	if err == nil {
		return nil
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == codeIndexNotFound || cmdErr.Code == codeNamespaceNotFound) {
		return nil
	}
	d.logger.Error("dropTTLIndex: DropOne failed", zap.Error(err))
	return fmt.Errorf("drop audit ttl index: %w", err)
}

func groupStages(dimension repository.AuditDimension) (mongo.Pipeline, error) {
	var key interface{}
	switch dimension {
	case repository.DimensionAction, repository.DimensionTargetType:
		key = "$" + string(dimension)
	case repository.DimensionActor:
		key = bson.D{{"$toString", "$" + fields.FieldAuditActorID}}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFacet, dimension)
	}

	return mongo.Pipeline{
		{{"$group", bson.D{{"_id", key}, {"count", bson.D{{"$sum", 1}}}}}},
		{{"$sort", bson.D{{"count", -1}, {"_id", 1}}}},
	}, nil
}

func timeRangeMatch(tr repository.TimeRange) bson.M {
	createdAt := bson.M{}
	if tr.Start != nil {
		createdAt["$gte"] = tr.Start.UTC()
	}
	if tr.End != nil {
		createdAt["$lte"] = tr.End.UTC()
	}
	if len(createdAt) == 0 {
		return nil
	}
	return bson.M{fields.FieldCreatedAt: createdAt}
}

func buildAuditFilter(f *repository.AuditLogFilter) bson.M {
	filter := bson.M{}
	if f == nil {
		return filter
	}

	if f.Action != "" {
		filter[fields.FieldAuditAction] = f.Action
	}
	if f.TargetType != "" {
		filter[fields.FieldAuditTargetType] = f.TargetType
	}
	if f.TargetID != "" {
		filter[fields.FieldAuditTargetID] = f.TargetID
	}
	if f.ActorID != nil {
		filter[fields.FieldAuditActorID] = *f.ActorID
	}

	createdAt := bson.M{}
	if f.StartDate != nil {
		createdAt["$gte"] = f.StartDate.UTC()
	}
	if f.EndDate != nil {
		createdAt["$lte"] = f.EndDate.UTC()
	}
	if f.CreatedBefore != nil {
		createdAt["$lt"] = f.CreatedBefore.UTC()
	}
	if len(createdAt) > 0 {
		filter[fields.FieldCreatedAt] = createdAt
	}

	return filter
}
