// Package entitystore implements the in-memory record store behind the
// development backend. It accepts any entity type the loaded schema
// declares, stamps server-owned header fields and enforces the schema's
// validation rules. Nothing is persisted: restarting the process starts
// over from an empty store.
package entitystore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/google/uuid"

	"github.com/velosovictor/frontblok-crud/internal/pkg/application/notifications"
	"github.com/velosovictor/frontblok-crud/pkg/crud"
	crderrors "github.com/velosovictor/frontblok-crud/pkg/crud/errors"
	"github.com/velosovictor/frontblok-crud/pkg/schema"
)

type EntityTypeLister interface {
	EntityTypes() []string
}

type EntityLister interface {
	ListEntities(ctx context.Context, entityName string, filters Filters) ([]crud.Record, error)
}

type EntityRetriever interface {
	RetrieveEntity(ctx context.Context, entityName, entityID string) (crud.Record, error)
}

type EntityCreator interface {
	CreateEntity(ctx context.Context, entityName string, fields map[string]any) (crud.Record, error)
}

type EntityUpdater interface {
	UpdateEntity(ctx context.Context, entityName, entityID string, fields map[string]any) (crud.Record, error)
}

type EntityRemover interface {
	RemoveEntity(ctx context.Context, entityName, entityID string) error
}

type EntityStore interface {
	EntityTypeLister
	EntityLister
	EntityRetriever
	EntityCreator
	EntityUpdater
	EntityRemover
}

// Filters narrows and windows the result of a list operation. Field filters
// match on the string form of the stored value, which mirrors how clients
// encode query options.
type Filters struct {
	Fields  map[string]string
	Limit   int
	Offset  int
	OrderBy string
}

type store struct {
	cfg      *schema.Config
	notifier notifications.Notifier

	mutex    sync.RWMutex
	entities map[string]map[string]crud.Record
}

type StoreOption func(*store)

// WithNotifier makes the store post a notification on every record change.
func WithNotifier(n notifications.Notifier) StoreOption {
	return func(s *store) {
		s.notifier = n
	}
}

func New(ctx context.Context, cfg *schema.Config, options ...StoreOption) (EntityStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	impl := &store{
		cfg:      cfg,
		entities: map[string]map[string]crud.Record{},
	}

	for _, option := range options {
		option(impl)
	}

	log := logging.GetFromContext(ctx)

	for _, def := range cfg.Entities {
		impl.entities[def.Name] = map[string]crud.Record{}
		log.Debug("registered entity type", "entity", def.Name)
	}

	return impl, nil
}

func (s *store) EntityTypes() []string {
	return s.cfg.EntityNames()
}

func (s *store) ListEntities(ctx context.Context, entityName string, filters Filters) ([]crud.Record, error) {
	def, err := s.resolve(entityName)
	if err != nil {
		return nil, err
	}

	for name := range filters.Fields {
		if _, ok := def.Field(name); !ok {
			return nil, crderrors.NewBadRequestError(fmt.Sprintf("entity %s has no field named %s", def.Name, name))
		}
	}

	orderBy, descending, err := parseOrderBy(def, filters.OrderBy)
	if err != nil {
		return nil, err
	}

	s.mutex.RLock()
	records := make([]crud.Record, 0, len(s.entities[def.Name]))
	for _, record := range s.entities[def.Name] {
		if matchesFilters(record, filters.Fields) {
			records = append(records, record)
		}
	}
	s.mutex.RUnlock()

	sortRecords(records, orderBy, descending)

	return window(records, filters.Offset, filters.Limit), nil
}

func (s *store) RetrieveEntity(ctx context.Context, entityName, entityID string) (crud.Record, error) {
	def, err := s.resolve(entityName)
	if err != nil {
		return crud.Record{}, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, ok := s.entities[def.Name][entityID]
	if !ok {
		return crud.Record{}, crderrors.NewNotFoundError(fmt.Sprintf("no %s with id %s", def.Name, entityID))
	}

	return record, nil
}

func (s *store) CreateEntity(ctx context.Context, entityName string, fields map[string]any) (crud.Record, error) {
	def, err := s.resolve(entityName)
	if err != nil {
		return crud.Record{}, err
	}

	fields = schema.ApplyDefaults(def, fields)

	if err := schema.ValidateRecord(def, fields, false); err != nil {
		return crud.Record{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.checkUniqueLocked(def, fields, ""); err != nil {
		return crud.Record{}, err
	}

	if err := s.checkReferencesLocked(def, fields); err != nil {
		return crud.Record{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	record := crud.NewRecord(uuid.NewString(), fields).WithTimestamps(now, now)

	s.entities[def.Name][record.ID()] = record

	logging.GetFromContext(ctx).Debug("created entity", "entity", def.Name, "record_id", record.ID())

	if s.notifier != nil {
		// enqueued while holding the lock so delivery order matches change order
		s.notifier.EntityCreated(ctx, def.Name, record)
	}

	return record, nil
}

func (s *store) UpdateEntity(ctx context.Context, entityName, entityID string, fields map[string]any) (crud.Record, error) {
	def, err := s.resolve(entityName)
	if err != nil {
		return crud.Record{}, err
	}

	if err := schema.ValidateRecord(def, fields, true); err != nil {
		return crud.Record{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, ok := s.entities[def.Name][entityID]
	if !ok {
		return crud.Record{}, crderrors.NewNotFoundError(fmt.Sprintf("no %s with id %s", def.Name, entityID))
	}

	if err := s.checkUniqueLocked(def, fields, entityID); err != nil {
		return crud.Record{}, err
	}

	if err := s.checkReferencesLocked(def, fields); err != nil {
		return crud.Record{}, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	record := existing.Merge(fields).WithTimestamps(existing.CreatedAt(), now)

	s.entities[def.Name][entityID] = record

	if s.notifier != nil {
		s.notifier.EntityUpdated(ctx, def.Name, record)
	}

	return record, nil
}

func (s *store) RemoveEntity(ctx context.Context, entityName, entityID string) error {
	def, err := s.resolve(entityName)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.entities[def.Name][entityID]; !ok {
		return crderrors.NewNotFoundError(fmt.Sprintf("no %s with id %s", def.Name, entityID))
	}

	delete(s.entities[def.Name], entityID)

	logging.GetFromContext(ctx).Debug("removed entity", "entity", def.Name, "record_id", entityID)

	if s.notifier != nil {
		s.notifier.EntityRemoved(ctx, def.Name, entityID)
	}

	return nil
}

func (s *store) resolve(entityName string) (schema.Definition, error) {
	def, ok := s.cfg.FindDefinition(entityName)
	if !ok {
		return schema.Definition{}, crderrors.NewNotFoundError(fmt.Sprintf("unknown entity type %s", entityName))
	}

	return def, nil
}

func (s *store) checkUniqueLocked(def schema.Definition, fields map[string]any, excludeID string) error {
	for _, name := range def.FieldNames() {
		spec := def.Fields[name]
		if !spec.Unique {
			continue
		}

		value, ok := fields[name]
		if !ok || value == nil {
			continue
		}

		for id, existing := range s.entities[def.Name] {
			if id == excludeID {
				continue
			}

			if existingValue, ok := existing.Value(name); ok && stringify(existingValue) == stringify(value) {
				return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be unique, value %v is already taken", name, value))
			}
		}
	}

	return nil
}

func (s *store) checkReferencesLocked(def schema.Definition, fields map[string]any) error {
	for _, name := range def.FieldNames() {
		spec := def.Fields[name]
		if spec.References == "" {
			continue
		}

		value, ok := fields[name]
		if !ok || value == nil {
			continue
		}

		id, ok := value.(string)
		if !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s must be the id of a %s", name, spec.References))
		}

		if _, ok := s.entities[spec.References][id]; !ok {
			return crderrors.NewBadRequestError(fmt.Sprintf("field %s references a %s that does not exist", name, spec.References))
		}
	}

	return nil
}

func matchesFilters(record crud.Record, fields map[string]string) bool {
	for name, expected := range fields {
		value, ok := record.Value(name)
		if !ok {
			return false
		}

		if stringify(value) != expected {
			return false
		}
	}

	return true
}

func parseOrderBy(def schema.Definition, orderBy string) (string, bool, error) {
	if orderBy == "" {
		return "", false, nil
	}

	descending := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")

	switch field {
	case crud.FieldID, crud.FieldCreatedAt, crud.FieldUpdatedAt:
		return field, descending, nil
	}

	if _, ok := def.Field(field); !ok {
		return "", false, crderrors.NewBadRequestError(fmt.Sprintf("entity %s has no field named %s", def.Name, field))
	}

	return field, descending, nil
}

// sortRecords orders by the requested field with the record id as a
// tiebreaker, or by creation time when no ordering was requested. The order
// is total, so repeated lists over unchanged content return the same
// sequence.
func sortRecords(records []crud.Record, orderBy string, descending bool) {
	key := func(r crud.Record) string {
		switch orderBy {
		case "", crud.FieldCreatedAt:
			return r.CreatedAt()
		case crud.FieldID:
			return r.ID()
		case crud.FieldUpdatedAt:
			return r.UpdatedAt()
		}

		if value, ok := r.Value(orderBy); ok && value != nil {
			return stringify(value)
		}

		return ""
	}

	sort.Slice(records, func(i, j int) bool {
		ki, kj := key(records[i]), key(records[j])
		if ki == kj {
			return records[i].ID() < records[j].ID()
		}

		if descending {
			return ki > kj
		}

		return ki < kj
	})
}

func window(records []crud.Record, offset, limit int) []crud.Record {
	if offset < 0 {
		offset = 0
	}

	if offset >= len(records) {
		return []crud.Record{}
	}

	records = records[offset:]

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	return records
}

func stringify(value any) string {
	return fmt.Sprintf("%v", value)
}
