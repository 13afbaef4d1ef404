//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mock/repository.go
package contact

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hmnpros/gateway/core"
)

// Repository maintains the local contact mirror. Reads go through a
// short memcached cache since the admin dashboard polls them.
type Repository interface {
	Upsert(ctx context.Context, contact core.Contact) error
	Get(ctx context.Context, id string) (core.Contact, error)
	Delete(ctx context.Context, id string) error
	Merge(ctx context.Context, id string, mergedInto string) error
	SetTags(ctx context.Context, id string, tags []string) error
	Touch(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewRepository(db *gorm.DB, mc *memcache.Client) Repository {
	return &repository{db, mc}
}

const cacheTTL = 60 // seconds

func cacheKey(id string) string {
	return "contact:" + id
}

func (r *repository) Upsert(ctx context.Context, contact core.Contact) error {
	ctx, span := tracer.Start(ctx, "Contact.Repository.Upsert")
	defer span.End()

	if err := r.db.WithContext(ctx).Save(&contact).Error; err != nil {
		span.RecordError(err)
		return err
	}
	r.invalidate(contact.ID)
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (core.Contact, error) {
	ctx, span := tracer.Start(ctx, "Contact.Repository.Get")
	defer span.End()

	if item, err := r.mc.Get(cacheKey(id)); err == nil {
		var cached core.Contact
		if err := json.Unmarshal(item.Value, &cached); err == nil {
			return cached, nil
		}
	}

	var contact core.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return core.Contact{}, core.NewErrorNotFound()
		}
		span.RecordError(err)
		return core.Contact{}, err
	}

	if encoded, err := json.Marshal(contact); err == nil {
		r.mc.Set(&memcache.Item{Key: cacheKey(id), Value: encoded, Expiration: cacheTTL})
	}

	return contact, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Contact.Repository.Delete")
	defer span.End()

	if err := r.db.WithContext(ctx).Delete(&core.Contact{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return err
	}
	r.invalidate(id)
	return nil
}

func (r *repository) Merge(ctx context.Context, id string, mergedInto string) error {
	ctx, span := tracer.Start(ctx, "Contact.Repository.Merge")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Contact{}).
		Where("id = ?", id).
		Update("merged_into", mergedInto).Error
	if err != nil {
		span.RecordError(err)
		return err
	}
	r.invalidate(id)
	return nil
}

func (r *repository) SetTags(ctx context.Context, id string, tags []string) error {
	ctx, span := tracer.Start(ctx, "Contact.Repository.SetTags")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Contact{}).
		Where("id = ?", id).
		Update("tags", pq.StringArray(tags)).Error
	if err != nil {
		span.RecordError(err)
		return err
	}
	r.invalidate(id)
	return nil
}

// Touch bumps a contact's modification time and drops its cached copy.
// Used by events that change CRM-side state the mirror doesn't model.
func (r *repository) Touch(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Contact.Repository.Touch")
	defer span.End()

	err := r.db.WithContext(ctx).Model(&core.Contact{}).
		Where("id = ?", id).
		Update("m_date", time.Now()).Error
	if err != nil {
		span.RecordError(err)
		return err
	}
	r.invalidate(id)
	return nil
}

func (r *repository) invalidate(id string) {
	r.mc.Delete(cacheKey(id))
}
