package domain

import "context"

// Offer 供应商报盘。创建后不可修改，仅创建者可删除。
type Offer struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Product   string  `gorm:"size:128;not null" json:"product"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	StartDate string  `gorm:"column:start_date;size:32;not null" json:"start_date"`
	EndDate   string  `gorm:"column:end_date;size:32;not null" json:"end_date"`
	Price     float64 `gorm:"not null" json:"price"`
	Batches   int     `gorm:"not null" json:"batches"`
	Offerer   uint    `gorm:"index;not null" json:"offerer"`
}

func (Offer) TableName() string { return "offer" }

// OfferSummary 列表行：offer 关联报盘人用户名
type OfferSummary struct {
	ID          uint    `json:"id"`
	Product     string  `json:"product"`
	Quantity    int     `json:"quantity"`
	StartDate   string  `gorm:"column:start_date" json:"start_date"`
	EndDate     string  `gorm:"column:end_date" json:"end_date"`
	Batches     int     `json:"batches"`
	Price       float64 `json:"price"`
	OffererName string  `gorm:"column:offerer_name" json:"offerer_name"`
}

// OfferDetail 详情行：再带上报盘人角色
type OfferDetail struct {
	ID          uint    `json:"id"`
	Product     string  `json:"product"`
	Quantity    int     `json:"quantity"`
	StartDate   string  `gorm:"column:start_date" json:"start_date"`
	EndDate     string  `gorm:"column:end_date" json:"end_date"`
	Batches     int     `json:"batches"`
	Price       float64 `json:"price"`
	OffererName string  `gorm:"column:offerer_name" json:"offerer_name"`
	OffererRole Role    `gorm:"column:offerer_role" json:"offerer_role"`
}

type OfferRepository interface {
	Create(ctx context.Context, o *Offer) error
	ListAll(ctx context.Context) ([]OfferSummary, error)
	ListByOfferer(ctx context.Context, offererID uint) ([]Offer, error)
	// FindByID 未命中返回 (nil, nil)
	FindByID(ctx context.Context, id uint) (*Offer, error)
	// FindDetail 未命中返回 (nil, nil)
	FindDetail(ctx context.Context, id uint) (*OfferDetail, error)
	// DeleteOwned 单条条件删除（id + offerer 同时匹配），返回删除行数
	DeleteOwned(ctx context.Context, id, offererID uint) (int64, error)
}
