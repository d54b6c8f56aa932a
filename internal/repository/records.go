package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/covera-app/covera/internal/entity"
)

// VendorKey is the storage key of one vendor.
func VendorKey(orgID, id string) string { return "vendor:" + orgID + ":" + id }

// ContractKey is the storage key of one contract.
func ContractKey(orgID, id string) string { return "contract:" + orgID + ":" + id }

type VendorRepository interface {
	Get(ctx context.Context, orgID, id string) (*entity.Vendor, error)
	List(ctx context.Context, orgID string) ([]*entity.Vendor, error)
	Save(ctx context.Context, v *entity.Vendor) error
	Delete(ctx context.Context, orgID string, ids ...string) error
}

type ContractRepository interface {
	Get(ctx context.Context, orgID, id string) (*entity.Contract, error)
	List(ctx context.Context, orgID string) ([]*entity.Contract, error)
	Save(ctx context.Context, c *entity.Contract) error
	Delete(ctx context.Context, orgID string, ids ...string) error
}

func NewVendorRepository(store KVStore, logger *slog.Logger) VendorRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &vendorRepository{records[entity.Vendor]{store: store, logger: logger, kind: "vendor"}}
}

func NewContractRepository(store KVStore, logger *slog.Logger) ContractRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &contractRepository{records[entity.Contract]{store: store, logger: logger, kind: "contract"}}
}

type vendorRepository struct{ r records[entity.Vendor] }

func (v *vendorRepository) Get(ctx context.Context, orgID, id string) (*entity.Vendor, error) {
	return v.r.get(ctx, orgID, id)
}

func (v *vendorRepository) List(ctx context.Context, orgID string) ([]*entity.Vendor, error) {
	return v.r.list(ctx, orgID)
}

func (v *vendorRepository) Save(ctx context.Context, rec *entity.Vendor) error {
	return v.r.save(ctx, rec.OrgID, rec.ID, rec)
}

func (v *vendorRepository) Delete(ctx context.Context, orgID string, ids ...string) error {
	return v.r.delete(ctx, orgID, ids)
}

type contractRepository struct{ r records[entity.Contract] }

func (c *contractRepository) Get(ctx context.Context, orgID, id string) (*entity.Contract, error) {
	return c.r.get(ctx, orgID, id)
}

func (c *contractRepository) List(ctx context.Context, orgID string) ([]*entity.Contract, error) {
	return c.r.list(ctx, orgID)
}

func (c *contractRepository) Save(ctx context.Context, rec *entity.Contract) error {
	return c.r.save(ctx, rec.OrgID, rec.ID, rec)
}

func (c *contractRepository) Delete(ctx context.Context, orgID string, ids ...string) error {
	return c.r.delete(ctx, orgID, ids)
}

// records is the JSON codec shared by the typed repositories. kind doubles
// as the key prefix.
type records[T any] struct {
	store  KVStore
	logger *slog.Logger
	kind   string
}

func (r records[T]) key(orgID, id string) string {
	return r.kind + ":" + orgID + ":" + id
}

func (r records[T]) get(ctx context.Context, orgID, id string) (*T, error) {
	if err := checkSegments(orgID, id); err != nil {
		return nil, err
	}
	raw, err := r.store.Get(ctx, r.key(orgID, id))
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		r.logger.Error("failed to decode record", "kind", r.kind, "org_id", orgID, "id", id, "error", err)
		return nil, fmt.Errorf("decode %s %s: %w", r.kind, id, err)
	}
	return &out, nil
}

func (r records[T]) list(ctx context.Context, orgID string) ([]*T, error) {
	if err := checkSegments(orgID); err != nil {
		return nil, err
	}
	kvs, err := r.store.GetByPrefix(ctx, r.kind+":"+orgID+":")
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(kvs))
	for _, kv := range kvs {
		var rec T
		if err := json.Unmarshal(kv.Value, &rec); err != nil {
			// one corrupt blob should not hide the rest of the org
			r.logger.Warn("skipping undecodable record", "key", kv.Key, "error", err)
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (r records[T]) save(ctx context.Context, orgID, id string, rec *T) error {
	if rec == nil {
		return errors.New("nil record")
	}
	if err := checkSegments(orgID, id); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.kind, id, err)
	}
	return r.store.Set(ctx, r.key(orgID, id), b)
}

func (r records[T]) delete(ctx context.Context, orgID string, ids []string) error {
	if err := checkSegments(orgID); err != nil {
		return err
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := checkSegments(id); err != nil {
			return err
		}
		keys = append(keys, r.key(orgID, id))
	}
	return r.store.MDel(ctx, keys)
}
