// Package memory 提供三个仓储接口的内存实现，用于测试替身。
package memory

import (
	"context"
	"sort"
	"sync"

	"bidmarket/internal/domain"
)

type Store struct {
	mu        sync.Mutex
	users     map[uint]domain.User
	offers    map[uint]domain.Offer
	bids      map[uint]domain.Bid
	nextUser  uint
	nextOffer uint
	nextBid   uint
}

func NewStore() *Store {
	return &Store{
		users:  make(map[uint]domain.User),
		offers: make(map[uint]domain.Offer),
		bids:   make(map[uint]domain.Bid),
	}
}

func (s *Store) Users() domain.UserRepository   { return userRepo{s} }
func (s *Store) Offers() domain.OfferRepository { return offerRepo{s} }
func (s *Store) Bids() domain.BidRepository     { return bidRepo{s} }

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) OfferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers)
}

func (s *Store) BidCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bids)
}

// ---- users ----

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, ex := range r.s.users {
		if ex.Username == u.Username || ex.Email == u.Email {
			return domain.ErrDuplicateUser
		}
	}
	r.s.nextUser++
	u.ID = r.s.nextUser
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r userRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r userRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[u.ID] = *u
	return nil
}

// ---- offers ----

type offerRepo struct{ s *Store }

func (r offerRepo) Create(_ context.Context, o *domain.Offer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextOffer++
	o.ID = r.s.nextOffer
	r.s.offers[o.ID] = *o
	return nil
}

func (r offerRepo) ListAll(_ context.Context) ([]domain.OfferSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.OfferSummary, 0, len(r.s.offers))
	for _, o := range r.s.offers {
		out = append(out, domain.OfferSummary{
			ID: o.ID, Product: o.Product, Quantity: o.Quantity,
			StartDate: o.StartDate, EndDate: o.EndDate,
			Batches: o.Batches, Price: o.Price,
			OffererName: r.s.users[o.Offerer].Username,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r offerRepo) ListByOfferer(_ context.Context, offererID uint) ([]domain.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Offer, 0)
	for _, o := range r.s.offers {
		if o.Offerer == offererID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r offerRepo) FindByID(_ context.Context, id uint) (*domain.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r offerRepo) FindDetail(_ context.Context, id uint) (*domain.OfferDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, nil
	}
	owner := r.s.users[o.Offerer]
	return &domain.OfferDetail{
		ID: o.ID, Product: o.Product, Quantity: o.Quantity,
		StartDate: o.StartDate, EndDate: o.EndDate,
		Batches: o.Batches, Price: o.Price,
		OffererName: owner.Username, OffererRole: owner.Role,
	}, nil
}

func (r offerRepo) DeleteOwned(_ context.Context, id, offererID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok || o.Offerer != offererID {
		return 0, nil
	}
	delete(r.s.offers, id)
	return 1, nil
}

// ---- bids ----

type bidRepo struct{ s *Store }

func (r bidRepo) Create(_ context.Context, b *domain.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextBid++
	b.ID = r.s.nextBid
	r.s.bids[b.ID] = *b
	return nil
}

func (r bidRepo) ListByOffer(_ context.Context, offerID uint) ([]domain.BidRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.BidRow, 0)
	for _, b := range r.s.bids {
		if b.Offer == offerID {
			out = append(out, domain.BidRow{
				ID: b.ID, Price: b.Price, Bidder: b.Bidder,
				BidderName: r.s.users[b.Bidder].Username,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
