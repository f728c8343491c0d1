package domain

import "context"

// Bid 买方出价。只增不改不删，同一买家可对同一报盘重复出价。
type Bid struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Bidder uint    `gorm:"index;not null" json:"bidder"`
	Offer  uint    `gorm:"index;not null" json:"offer"`
	Price  float64 `gorm:"not null" json:"price"`
}

func (Bid) TableName() string { return "bid" }

// BidRow 出价列表行，关联出价人用户名
type BidRow struct {
	ID         uint    `json:"id"`
	Price      float64 `json:"price"`
	Bidder     uint    `json:"bidder"`
	BidderName string  `gorm:"column:bidder_name" json:"bidder_name"`
}

type BidRepository interface {
	Create(ctx context.Context, b *Bid) error
	ListByOffer(ctx context.Context, offerID uint) ([]BidRow, error)
}
