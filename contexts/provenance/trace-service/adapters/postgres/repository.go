package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tracechain/contexts/provenance/trace-service/domain/entities"
	domainerrors "tracechain/contexts/provenance/trace-service/domain/errors"
	"tracechain/contexts/provenance/trace-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	productCounterName = "product_id"
)

type Repository struct {
	db     *gorm.DB
	ids    ports.IDGenerator
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, ids ports.IDGenerator, logger *slog.Logger) *Repository {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		ids:    ids,
		logger: logger,
	}
}

// Migrate provisions the provenance tables. Invoked from bootstrap; safe to
// call repeatedly.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&productModel{},
		&productEventModel{},
		&counterModel{},
		&idempotencyModel{},
		&outboxModel{},
	)
}

func (r *Repository) CreateProduct(ctx context.Context, input ports.CreateProductInput) (entities.Product, entities.Event, error) {
	var product entities.Product
	var created entities.Event

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productID, err := nextCounterValue(tx, productCounterName)
		if err != nil {
			return err
		}

		now := input.Now.UTC()
		row := productModel{
			ProductID:      productID,
			ManufacturerID: strings.TrimSpace(input.Manufacturer),
			OwnerID:        strings.TrimSpace(input.Manufacturer),
			Metadata:       append([]byte(nil), input.Metadata...),
			CreatedAt:      now,
			EventCount:     1,
		}
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrProductExists
			}
			return err
		}

		eventRow := productEventModel{
			ProductID:  productID,
			Sequence:   1,
			Kind:       string(entities.EventKindCreated),
			ActorID:    row.ManufacturerID,
			OccurredAt: now,
		}
		if err := tx.Create(&eventRow).Error; err != nil {
			return err
		}

		eventID, err := r.ids.NewID(ctx)
		if err != nil {
			return err
		}
		envelope, err := newTraceEnvelope(eventID, "product.registered", productID, now, map[string]any{
			"product_id":   productID,
			"manufacturer": row.ManufacturerID,
		})
		if err != nil {
			return err
		}
		if err := appendOutbox(tx, envelope); err != nil {
			return err
		}

		product = row.toEntity()
		created = eventRow.toEntity()
		return nil
	})
	if err != nil {
		return entities.Product{}, entities.Event{}, err
	}
	return product, created, nil
}

func (r *Repository) AppendEvent(ctx context.Context, input ports.AppendEventInput) (ports.AppendEventResult, error) {
	var result ports.AppendEventResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent writers targeting one product;
		// sequence assignment and owner updates must not interleave.
		var row productModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", input.ProductID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrProductNotFound
			}
			return err
		}

		var last productEventModel
		if err := tx.Where("product_id = ?", input.ProductID).
			Order("sequence DESC").
			First(&last).
			Error; err != nil {
			return err
		}
		if !entities.CanFollow(entities.EventKind(last.Kind), input.Kind) {
			return domainerrors.ErrInvalidTransition
		}
		if entities.IsRepeatable(input.Kind) && input.RepeatLimit > 0 {
			var occurrences int64
			if err := tx.Model(&productEventModel{}).
				Where("product_id = ? AND kind = ?", input.ProductID, string(input.Kind)).
				Count(&occurrences).
				Error; err != nil {
				return err
			}
			if !entities.WithinRepeatLimit(input.Kind, int(occurrences), input.RepeatLimit) {
				return domainerrors.ErrInvalidTransition
			}
		}
		sequence, ok := entities.NextSequence(uint32(last.Sequence))
		if !ok {
			return domainerrors.ErrCounterOverflow
		}

		now := input.Now.UTC()
		actor := strings.TrimSpace(input.Actor)
		eventRow := productEventModel{
			ProductID:  input.ProductID,
			Sequence:   int64(sequence),
			Kind:       string(input.Kind),
			ActorID:    actor,
			OccurredAt: now,
		}
		if err := tx.Create(&eventRow).Error; err != nil {
			return err
		}

		previousOwner := row.OwnerID
		ownerChanged := input.Kind == entities.EventKindReceived && actor != row.OwnerID
		updates := map[string]any{
			"event_count": int64(sequence),
		}
		if input.Kind == entities.EventKindReceived {
			updates["owner_id"] = actor
			row.OwnerID = actor
		}
		row.EventCount = int64(sequence)
		if err := tx.Model(&productModel{}).
			Where("product_id = ?", input.ProductID).
			Updates(updates).
			Error; err != nil {
			return err
		}

		loggedID, err := r.ids.NewID(ctx)
		if err != nil {
			return err
		}
		logged, err := newTraceEnvelope(loggedID, "product.lifecycle_event_logged", input.ProductID, now, map[string]any{
			"product_id": input.ProductID,
			"kind":       string(input.Kind),
			"sequence":   sequence,
			"actor":      actor,
		})
		if err != nil {
			return err
		}
		if err := appendOutbox(tx, logged); err != nil {
			return err
		}
		if input.Kind == entities.EventKindReceived {
			transferredID, err := r.ids.NewID(ctx)
			if err != nil {
				return err
			}
			transferred, err := newTraceEnvelope(transferredID, "product.ownership_transferred", input.ProductID, now, map[string]any{
				"product_id": input.ProductID,
				"from_owner": previousOwner,
				"to_owner":   actor,
			})
			if err != nil {
				return err
			}
			if err := appendOutbox(tx, transferred); err != nil {
				return err
			}
		}

		result = ports.AppendEventResult{
			Event:         eventRow.toEntity(),
			Product:       row.toEntity(),
			OwnerChanged:  ownerChanged,
			PreviousOwner: previousOwner,
		}
		return nil
	})
	if err != nil {
		return ports.AppendEventResult{}, err
	}
	return result, nil
}

func (r *Repository) GetProduct(ctx context.Context, productID uint64) (entities.Product, error) {
	var row productModel
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Product{}, domainerrors.ErrProductNotFound
		}
		return entities.Product{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListEvents(ctx context.Context, productID uint64) ([]entities.Event, error) {
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	var rows []productEventModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Event, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListProductsByOwner(ctx context.Context, ownerID string) ([]entities.Product, error) {
	return r.listProducts(ctx, "owner_id = ?", strings.TrimSpace(ownerID))
}

func (r *Repository) ListProductsByManufacturer(ctx context.Context, manufacturerID string) ([]entities.Product, error) {
	return r.listProducts(ctx, "manufacturer_id = ?", strings.TrimSpace(manufacturerID))
}

func (r *Repository) listProducts(ctx context.Context, condition string, accountID string) ([]entities.Product, error) {
	var rows []productModel
	if err := r.db.WithContext(ctx).
		Where(condition, accountID).
		Order("product_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:             row.Key,
		RequestHash:     row.RequestHash,
		ResponsePayload: append([]byte(nil), row.ResponsePayload...),
		ExpiresAt:       row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:             strings.TrimSpace(record.Key),
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash || !bytes.Equal(existing.ResponsePayload, row.ResponsePayload) {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	// Zero rows means the row was already published or trimmed; the relay may
	// retry after a publish.
	return result.Error
}

// nextCounterValue bumps the named monotonic counter under a row lock so
// identifier allocation commits or rolls back with the rest of the
// transaction and never burns values on failure.
func nextCounterValue(tx *gorm.DB, name string) (uint64, error) {
	seed := counterModel{Name: name, Value: 0}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return 0, err
	}

	var row counterModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", name).
		First(&row).
		Error; err != nil {
		return 0, err
	}

	next, ok := entities.NextProductID(row.Value)
	if !ok {
		return 0, domainerrors.ErrCounterOverflow
	}
	if err := tx.Model(&counterModel{}).
		Where("name = ?", name).
		Update("value", next).
		Error; err != nil {
		return 0, err
	}
	return next, nil
}

func appendOutbox(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	return tx.Create(&row).Error
}

func newTraceEnvelope(
	eventID string,
	eventType string,
	productID uint64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "trace-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "product_id",
		PartitionKey:     strconv.FormatUint(productID, 10),
		Data:             payload,
	}, nil
}

type productModel struct {
	ProductID      uint64    `gorm:"column:product_id;primaryKey"`
	ManufacturerID string    `gorm:"column:manufacturer_id;index"`
	OwnerID        string    `gorm:"column:owner_id;index"`
	Metadata       []byte    `gorm:"column:metadata"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	EventCount     int64     `gorm:"column:event_count"`
}

func (productModel) TableName() string {
	return "products"
}

func (m productModel) toEntity() entities.Product {
	return entities.Product{
		ProductID:    m.ProductID,
		Manufacturer: m.ManufacturerID,
		Owner:        m.OwnerID,
		Metadata:     append([]byte(nil), m.Metadata...),
		CreatedAt:    m.CreatedAt.UTC(),
		EventCount:   uint32(m.EventCount),
	}
}

type productEventModel struct {
	ProductID  uint64    `gorm:"column:product_id;primaryKey;autoIncrement:false"`
	Sequence   int64     `gorm:"column:sequence;primaryKey;autoIncrement:false"`
	Kind       string    `gorm:"column:kind"`
	ActorID    string    `gorm:"column:actor_id"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (productEventModel) TableName() string {
	return "product_events"
}

func (m productEventModel) toEntity() entities.Event {
	return entities.Event{
		ProductID:  m.ProductID,
		Sequence:   uint32(m.Sequence),
		Kind:       entities.EventKind(m.Kind),
		Actor:      m.ActorID,
		OccurredAt: m.OccurredAt.UTC(),
	}
}

type counterModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (counterModel) TableName() string {
	return "trace_counters"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "trace_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "trace_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
