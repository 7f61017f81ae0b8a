package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/tdex-amm/internal/core/application"
	"github.com/tdex-network/tdex-amm/pkg/mathutil"
)

const (
	// DatadirKey is the local data directory to store pools and balances
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// DefaultSlippageKey is the slippage tolerance of new pools, as a fraction (0.05 = 5%)
	DefaultSlippageKey = "DEFAULT_SLIPPAGE"
	// OwnerKey is the account allowed to change the slippage tolerance of pools
	OwnerKey = "OWNER"
	// TreasuryKey is the account receiving the fees of pools created without
	// an explicit treasury
	TreasuryKey = "TREASURY"
	// FeeTiersKey is the comma separated list of fee numerators (over 100)
	// pools can be created with
	FeeTiersKey = "FEE_TIERS"
	// GatewayBreakerKey enables the circuit breaker in front of the asset
	// transfer gateway
	GatewayBreakerKey = "GATEWAY_BREAKER"

	DbLocation = "db"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("tdex-amm", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("TDEX_AMM")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, int(log.InfoLevel))
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(DefaultSlippageKey, 0.05)
	vip.SetDefault(OwnerKey, "operator")
	vip.SetDefault(TreasuryKey, "treasury")
	vip.SetDefault(FeeTiersKey, "1,3,5")
	vip.SetDefault(GatewayBreakerKey, false)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDbDir() string {
	if GetString(DBTypeKey) == application.DBInMemory {
		return ""
	}
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetLogLevel() log.Level {
	return log.Level(GetInt(LogLevelKey))
}

// GetDefaultSlippage returns the configured default tolerance as numerator
// over mathutil.SlippagePrecision().
func GetDefaultSlippage() uint64 {
	// Validated at init.
	slippage, _ := parseSlippage(GetString(DefaultSlippageKey))
	return slippage
}

func GetFeeTiers() []uint64 {
	// Validated at init.
	tiers, _ := parseFeeTiers(GetString(FeeTiersKey))
	return tiers
}

// GetServiceConfig returns the settings of the pool service.
func GetServiceConfig() application.Config {
	return application.Config{
		Owner:           GetString(OwnerKey),
		DefaultSlippage: GetDefaultSlippage(),
		DefaultTreasury: GetString(TreasuryKey),
		FeeTiers:        GetFeeTiers(),
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	level := GetInt(LogLevelKey)
	if level < int(log.PanicLevel) || level > int(log.TraceLevel) {
		return fmt.Errorf(
			"%s must be in range [%d, %d]",
			LogLevelKey, log.PanicLevel, log.TraceLevel,
		)
	}

	dbType := GetString(DBTypeKey)
	if dbType != application.DBBadger && dbType != application.DBInMemory {
		return fmt.Errorf(
			"db type must be either '%s' or '%s'",
			application.DBBadger, application.DBInMemory,
		)
	}

	if _, err := parseSlippage(GetString(DefaultSlippageKey)); err != nil {
		return err
	}

	if GetString(OwnerKey) == "" {
		return fmt.Errorf("missing owner")
	}

	if _, err := parseFeeTiers(GetString(FeeTiersKey)); err != nil {
		return err
	}

	return nil
}

// parseSlippage converts a fraction in [0, 1] to a numerator over
// mathutil.SlippagePrecision().
func parseSlippage(value string) (uint64, error) {
	fraction, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid default slippage: %s", err)
	}
	if fraction.IsNegative() || fraction.GreaterThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("default slippage must be in range [0, 1]")
	}
	return application.SlippageFromPercentage(fraction.Mul(decimal.NewFromInt(100)))
}

func parseFeeTiers(value string) ([]uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	tiers := make([]uint64, 0)
	for _, s := range strings.Split(value, ",") {
		tier, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fee tier %q: %s", s, err)
		}
		if tier == 0 || tier >= mathutil.FeePrecision() {
			return nil, fmt.Errorf(
				"fee tier %d must be in range (0, %d)", tier, mathutil.FeePrecision(),
			)
		}
		tiers = append(tiers, tier)
	}
	return tiers, nil
}

func initDatadir() error {
	if GetString(DBTypeKey) == application.DBInMemory {
		return makeDirectoryIfNotExists(GetDatadir())
	}
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
