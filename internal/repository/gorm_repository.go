package repository

import (
	"bidding-room/internal/biddingerrors"
	model "bidding-room/internal/models"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuctionModel maps the auctions table
type AuctionModel struct {
	ID            uint            `gorm:"primaryKey"`
	AuctionID     string          `gorm:"column:auction_id;type:varchar(64);uniqueIndex;not null"`
	SellerID      string          `gorm:"column:seller_id;type:varchar(64);index;not null"`
	Title         string          `gorm:"column:title;type:varchar(255)"`
	StartingPrice decimal.Decimal `gorm:"column:starting_price;type:decimal(20,2);not null"`
	CurrentPrice  decimal.Decimal `gorm:"column:current_price;type:decimal(20,2);not null;default:0"`
	EndsAt        time.Time       `gorm:"column:ends_at;not null"`
	Status        string          `gorm:"column:status;type:varchar(16);index;not null"`
	UpdatedAt     time.Time
}

func (AuctionModel) TableName() string { return "auctions" }

// BidModel maps the append-only accepted_bids table. The composite unique
// index on (auction_id, amount) is the durable price-uniqueness backstop.
type BidModel struct {
	Sequence   int64           `gorm:"column:sequence;primaryKey;autoIncrement"`
	BidID      string          `gorm:"column:bid_id;type:char(36);uniqueIndex;not null"`
	AuctionID  string          `gorm:"column:auction_id;type:varchar(64);not null;uniqueIndex:idx_auction_amount,priority:1"`
	BidderID   string          `gorm:"column:bidder_id;type:varchar(64);index;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null;uniqueIndex:idx_auction_amount,priority:2"`
	AcceptedAt time.Time       `gorm:"column:accepted_at;not null"`
}

func (BidModel) TableName() string { return "accepted_bids" }

// GormRepo implements AuctionDB and BidLedger on top of a GORM connection
type GormRepo struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL with error translation enabled and migrates the schema
func OpenMySQL(dsn string) (*GormRepo, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.AutoMigrate(&AuctionModel{}, &BidModel{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return NewGormRepo(db), nil
}

// NewGormRepo wraps an existing connection. The connection must be opened with
// TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}

// GetAuction loads an auction by its public ID
func (r *GormRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	var m AuctionModel
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return m.toDomain(), nil
}

// UpdateCurrentPrice raises current_price; a lower or equal price leaves the row untouched
func (r *GormRepo) UpdateCurrentPrice(ctx context.Context, auctionID string, price float64) error {
	p := decimal.NewFromFloat(price)
	err := r.db.WithContext(ctx).
		Model(&AuctionModel{}).
		Where("auction_id = ? AND current_price < ?", auctionID, p).
		Update("current_price", p).Error
	if err != nil {
		return fmt.Errorf("update price for auction %s: %w", auctionID, err)
	}
	return nil
}

// AppendBid inserts the bid; the database assigns its sequence
func (r *GormRepo) AppendBid(ctx context.Context, bid model.AcceptedBid) (model.AcceptedBid, error) {
	m := bidModelFromDomain(bid)
	err := r.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.AcceptedBid{}, fmt.Errorf("append bid for auction %s at %.2f: %w", bid.AuctionID, bid.Amount, biddingerrors.ErrDuplicateAmount)
	}
	if err != nil {
		return model.AcceptedBid{}, fmt.Errorf("append bid for auction %s: %w", bid.AuctionID, err)
	}
	return m.toDomain(), nil
}

// GetBidsByAuction returns the auction's bids in commit order
func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.AcceptedBid, error) {
	var rows []BidModel
	err := r.db.WithContext(ctx).Where("auction_id = ?", auctionID).Order("sequence ASC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, err)
	}

	bids := make([]model.AcceptedBid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, row.toDomain())
	}
	return bids, nil
}

// FindBidByAmount is an index lookup on (auction_id, amount)
func (r *GormRepo) FindBidByAmount(ctx context.Context, auctionID string, amount float64) (model.AcceptedBid, bool, error) {
	var m BidModel
	err := r.db.WithContext(ctx).
		Where("auction_id = ? AND amount = ?", auctionID, decimal.NewFromFloat(amount)).
		Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.AcceptedBid{}, false, nil
	}
	if err != nil {
		return model.AcceptedBid{}, false, fmt.Errorf("find bid for auction %s: %w", auctionID, err)
	}
	return m.toDomain(), true, nil
}

// SaveAuction upserts an auction. Used by seeding and admin tooling.
func (r *GormRepo) SaveAuction(ctx context.Context, auction model.Auction) error {
	m := auctionModelFromDomain(auction)
	err := r.db.WithContext(ctx).
		Where("auction_id = ?", auction.AuctionID).
		Assign(m).
		FirstOrCreate(&AuctionModel{}).Error
	if err != nil {
		return fmt.Errorf("save auction %s: %w", auction.AuctionID, err)
	}
	return nil
}

func (m AuctionModel) toDomain() model.Auction {
	return model.Auction{
		AuctionID:     m.AuctionID,
		SellerID:      m.SellerID,
		Title:         m.Title,
		StartingPrice: m.StartingPrice.InexactFloat64(),
		CurrentPrice:  m.CurrentPrice.InexactFloat64(),
		EndsAt:        m.EndsAt,
		Status:        model.AuctionStatus(m.Status),
	}
}

func auctionModelFromDomain(a model.Auction) AuctionModel {
	return AuctionModel{
		AuctionID:     a.AuctionID,
		SellerID:      a.SellerID,
		Title:         a.Title,
		StartingPrice: decimal.NewFromFloat(a.StartingPrice),
		CurrentPrice:  decimal.NewFromFloat(a.CurrentPrice),
		EndsAt:        a.EndsAt,
		Status:        string(a.Status),
	}
}

func (m BidModel) toDomain() model.AcceptedBid {
	return model.AcceptedBid{
		BidID:      m.BidID,
		Sequence:   m.Sequence,
		AuctionID:  m.AuctionID,
		BidderID:   m.BidderID,
		Amount:     m.Amount.InexactFloat64(),
		AcceptedAt: m.AcceptedAt,
	}
}

func bidModelFromDomain(b model.AcceptedBid) BidModel {
	return BidModel{
		BidID:      b.BidID,
		AuctionID:  b.AuctionID,
		BidderID:   b.BidderID,
		Amount:     decimal.NewFromFloat(b.Amount),
		AcceptedAt: b.AcceptedAt,
	}
}
