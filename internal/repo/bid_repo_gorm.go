package repo

import (
	"context"

	"gorm.io/gorm"

	"bidmarket/internal/domain"
)

type BidRepo struct{ db *gorm.DB }

func NewBidRepo(db *gorm.DB) *BidRepo { return &BidRepo{db: db} }

func (r *BidRepo) Create(ctx context.Context, b *domain.Bid) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BidRepo) ListByOffer(ctx context.Context, offerID uint) ([]domain.BidRow, error) {
	rows := make([]domain.BidRow, 0)
	err := r.db.WithContext(ctx).Table("bid").
		Select("bid.id, bid.price, bid.bidder, app_user.username AS bidder_name").
		Joins("JOIN app_user ON bid.bidder = app_user.id").
		Where("bid.offer = ?", offerID).
		Scan(&rows).Error
	return rows, err
}
