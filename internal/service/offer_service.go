package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bidmarket/internal/domain"
)

// OfferService 报盘与出价的业务逻辑
type OfferService struct {
	offers domain.OfferRepository
	bids   domain.BidRepository
	users  domain.UserRepository
	log    *zap.Logger
}

func NewOfferService(offers domain.OfferRepository, bids domain.BidRepository, users domain.UserRepository, log *zap.Logger) *OfferService {
	return &OfferService{offers: offers, bids: bids, users: users, log: log}
}

func (s *OfferService) ListOffers(ctx context.Context) ([]domain.OfferSummary, error) {
	rows, err := s.offers.ListAll(ctx)
	if err != nil {
		s.log.Error("list offers", zap.Error(err))
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return rows, nil
}

func (s *OfferService) MyOffers(ctx context.Context, offererID uint) ([]domain.Offer, error) {
	rows, err := s.offers.ListByOfferer(ctx, offererID)
	if err != nil {
		s.log.Error("list my offers", zap.Error(err), zap.Uint("offerer", offererID))
		return nil, fmt.Errorf("list my offers: %w", err)
	}
	return rows, nil
}

func (s *OfferService) OfferDetail(ctx context.Context, id uint) (*domain.OfferDetail, error) {
	d, err := s.offers.FindDetail(ctx, id)
	if err != nil {
		s.log.Error("offer detail", zap.Error(err), zap.Uint("offer", id))
		return nil, fmt.Errorf("offer detail: %w", err)
	}
	if d == nil {
		return nil, domain.ErrOfferNotFound
	}
	return d, nil
}

type CreateOfferInput struct {
	Product   string
	Quantity  int
	StartDate string
	EndDate   string
	Price     float64
	Batches   int
}

// CreateOffer 字段齐全性由 handler 校验；日期先后与价格为正不做检查（历史契约，见 DESIGN.md）
func (s *OfferService) CreateOffer(ctx context.Context, offererID uint, in CreateOfferInput) (*domain.Offer, error) {
	o := &domain.Offer{
		Product:   in.Product,
		Quantity:  in.Quantity,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Price:     in.Price,
		Batches:   in.Batches,
		Offerer:   offererID,
	}
	if err := s.offers.Create(ctx, o); err != nil {
		s.log.Error("create offer", zap.Error(err), zap.Uint("offerer", offererID))
		return nil, fmt.Errorf("create offer: %w", err)
	}
	return o, nil
}

// PlaceBid 报盘必须存在；出价只增不删，允许重复出价
func (s *OfferService) PlaceBid(ctx context.Context, bidderID, offerID uint, price float64) (*domain.Bid, error) {
	o, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		s.log.Error("bid offer lookup", zap.Error(err), zap.Uint("offer", offerID))
		return nil, fmt.Errorf("find offer: %w", err)
	}
	if o == nil {
		return nil, domain.ErrOfferNotFound
	}
	b := &domain.Bid{Bidder: bidderID, Offer: offerID, Price: price}
	if err := s.bids.Create(ctx, b); err != nil {
		s.log.Error("insert bid", zap.Error(err), zap.Uint("offer", offerID))
		return nil, fmt.Errorf("insert bid: %w", err)
	}
	return b, nil
}

func (s *OfferService) ListBids(ctx context.Context, offerID uint) ([]domain.BidRow, error) {
	rows, err := s.bids.ListByOffer(ctx, offerID)
	if err != nil {
		s.log.Error("list bids", zap.Error(err), zap.Uint("offer", offerID))
		return nil, fmt.Errorf("list bids: %w", err)
	}
	return rows, nil
}

// DeleteOffer 将请求体里的 username 解析为 id，再做单条条件删除。
// 删除语句本身以 (id, offerer) 为条件原子执行，并发下丢失的行
// 只会表现为零行删除，与非属主一样返回 ErrNotOfferOwner。
func (s *OfferService) DeleteOffer(ctx context.Context, offerID uint, actingUsername string) error {
	u, err := s.users.FindByUsername(ctx, actingUsername)
	if err != nil {
		s.log.Error("delete offer user lookup", zap.Error(err))
		return fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	rows, err := s.offers.DeleteOwned(ctx, offerID, u.ID)
	if err != nil {
		s.log.Error("delete offer", zap.Error(err), zap.Uint("offer", offerID))
		return fmt.Errorf("delete offer: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotOfferOwner
	}
	return nil
}
