package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bidmarket/internal/domain"
)

const offerColumns = "offer.id, offer.product, offer.quantity, offer.start_date, offer.end_date, offer.batches, offer.price"

type OfferRepo struct{ db *gorm.DB }

func NewOfferRepo(db *gorm.DB) *OfferRepo { return &OfferRepo{db: db} }

func (r *OfferRepo) Create(ctx context.Context, o *domain.Offer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OfferRepo) ListAll(ctx context.Context) ([]domain.OfferSummary, error) {
	rows := make([]domain.OfferSummary, 0)
	err := r.db.WithContext(ctx).Table("offer").
		Select(offerColumns + ", app_user.username AS offerer_name").
		Joins("JOIN app_user ON offer.offerer = app_user.id").
		Scan(&rows).Error
	return rows, err
}

func (r *OfferRepo) ListByOfferer(ctx context.Context, offererID uint) ([]domain.Offer, error) {
	rows := make([]domain.Offer, 0)
	err := r.db.WithContext(ctx).Where("offerer = ?", offererID).Find(&rows).Error
	return rows, err
}

func (r *OfferRepo) FindByID(ctx context.Context, id uint) (*domain.Offer, error) {
	var o domain.Offer
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepo) FindDetail(ctx context.Context, id uint) (*domain.OfferDetail, error) {
	var d domain.OfferDetail
	err := r.db.WithContext(ctx).Table("offer").
		Select(offerColumns+", app_user.username AS offerer_name, app_user.role AS offerer_role").
		Joins("JOIN app_user ON offer.offerer = app_user.id").
		Where("offer.id = ?", id).
		Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *OfferRepo) DeleteOwned(ctx context.Context, id, offererID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND offerer = ?", id, offererID).
		Delete(&domain.Offer{})
	return res.RowsAffected, res.Error
}
