// Package entity defines the domain models for the pairs feature.
package entity

import "time"

// Category groups pairs for display.
type Category string

const (
	Major      Category = "major"
	Altcoin    Category = "altcoin"
	Stablecoin Category = "stablecoin"
)

// TradingPair is a spot market the service fetches candles and runs strategies for.
// Symbol uses the "BASE/QUOTE" form (e.g. "BTC/USDT").
type TradingPair struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:32;not null;uniqueIndex"`
	Name      string    `gorm:"size:255;not null"`
	Category  Category  `gorm:"size:32;not null;default:altcoin"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Defaults is the catalog seeded into an empty database.
var Defaults = []TradingPair{
	{Symbol: "BTC/USDT", Name: "Bitcoin", Category: Major, IsActive: true, SortKey: 10},
	{Symbol: "ETH/USDT", Name: "Ethereum", Category: Major, IsActive: true, SortKey: 20},
	{Symbol: "SOL/USDT", Name: "Solana", Category: Altcoin, IsActive: true, SortKey: 30},
	{Symbol: "XRP/USDT", Name: "XRP", Category: Altcoin, IsActive: true, SortKey: 40},
	{Symbol: "ADA/USDT", Name: "Cardano", Category: Altcoin, IsActive: true, SortKey: 50},
	{Symbol: "DOGE/USDT", Name: "Dogecoin", Category: Altcoin, IsActive: true, SortKey: 60},
	{Symbol: "USDC/USDT", Name: "USD Coin", Category: Stablecoin, IsActive: true, SortKey: 90},
}
