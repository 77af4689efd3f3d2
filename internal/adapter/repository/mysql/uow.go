package mysql

import (
	"context"

	"gorm.io/gorm"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Borrows: &BorrowRepository{db: tx},
		Books:   &BookRepository{db: tx},
		Fines:   &FineRepository{db: tx},
		Users:   &UserRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinBorrowTx(ctx context.Context, recordID string, fn func(r uow.Repos, rec *borrow.BorrowRecord) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the record row up-front to prevent races
		rec, err := r.Borrows.GetByRecordIDForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		return fn(r, rec)
	})
}

func (u *GormUoW) WithinFineTx(ctx context.Context, fineID string, fn func(r uow.Repos, f *fine.Fine) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		f, err := r.Fines.GetByFineIDForUpdate(ctx, fineID)
		if err != nil {
			return err
		}
		return fn(r, f)
	})
}
