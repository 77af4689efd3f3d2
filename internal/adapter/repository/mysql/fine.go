package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	fineDomain "library-circulation/internal/domain/fine"
)

type FineRepository struct{ db *gorm.DB }

func NewFineRepository(db *gorm.DB) *FineRepository { return &FineRepository{db: db} }

func (r *FineRepository) Create(ctx context.Context, f *fineDomain.Fine) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FineRepository) GetByFineID(ctx context.Context, fineID string) (*fineDomain.Fine, error) {
	return r.first(r.db.WithContext(ctx), fineID)
}

func (r *FineRepository) GetByFineIDForUpdate(ctx context.Context, fineID string) (*fineDomain.Fine, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), fineID)
}

func (r *FineRepository) first(q *gorm.DB, fineID string) (*fineDomain.Fine, error) {
	var out fineDomain.Fine
	if err := q.Where("fine_id = ?", fineID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fineDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *FineRepository) ListAll(ctx context.Context) ([]fineDomain.Fine, error) {
	var out []fineDomain.Fine
	res := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out)
	return out, res.Error
}

func (r *FineRepository) ListByUserID(ctx context.Context, userID string) ([]fineDomain.Fine, error) {
	var out []fineDomain.Fine
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *FineRepository) SaveIfStatus(ctx context.Context, f *fineDomain.Fine, expected fineDomain.Status) error {
	res := r.db.WithContext(ctx).
		Model(f).
		Where("status = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(f)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fineDomain.ErrStaleUpdate
	}
	return nil
}

func (r *FineRepository) CreateProof(ctx context.Context, p *fineDomain.Proof) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *FineRepository) ListProofs(ctx context.Context, fineNumericID uint64) ([]fineDomain.Proof, error) {
	var out []fineDomain.Proof
	res := r.db.WithContext(ctx).
		Where("fine_id = ?", fineNumericID).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *FineRepository) CountProofs(ctx context.Context, fineNumericID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&fineDomain.Proof{}).Where("fine_id = ?", fineNumericID).Count(&n)
	return n, res.Error
}
