package application

// Supported db types
const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

// Liquidity event kinds
const (
	liquidityAdded   = "add"
	liquidityRemoved = "remove"
)
