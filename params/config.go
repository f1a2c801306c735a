package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Contract holds the bootstrap values used to instantiate the contract on
// first start. An empty Admin disables bootstrap instantiation; the gateway's
// instantiate route can be used instead.
type Contract struct {
	Address      string // contract's own address on the host chain
	Admin        string // hex address; becomes the contract admin
	BindName     string
	ContractName string
	AskFee       *uint64
	BidFee       *uint64
}

type Node struct {
	DBPath     string
	ListenAddr string
	LogFile    string
}

type Config struct {
	Node     Node
	Contract Contract
}

func Default() Config {
	return Config{
		Node: Node{
			DBPath:     "data/orders.db",
			ListenAddr: ":8080",
			LogFile:    "data/node.log",
		},
		Contract: Contract{
			Address:      "0x00000000000000000000000000000000b11a7e7a",
			BindName:     "bilateral.sc",
			ContractName: "Bilateral Trade",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv("BILATERAL_DB_PATH"); v != "" {
		cfg.Node.DBPath = v
	}
	if v := os.Getenv("BILATERAL_LISTEN"); v != "" {
		cfg.Node.ListenAddr = v
	}
	if v := os.Getenv("BILATERAL_LOG_FILE"); v != "" {
		cfg.Node.LogFile = v
	}
	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" {
		cfg.Contract.Address = v
	}
	if v := os.Getenv("CONTRACT_ADMIN"); v != "" {
		cfg.Contract.Admin = v
	}
	if v := os.Getenv("CONTRACT_BIND_NAME"); v != "" {
		cfg.Contract.BindName = v
	}
	if v := os.Getenv("CONTRACT_NAME"); v != "" {
		cfg.Contract.ContractName = v
	}
	cfg.Contract.AskFee = feeFromEnv("ASK_FEE")
	cfg.Contract.BidFee = feeFromEnv("BID_FEE")

	return cfg
}

// feeFromEnv parses an optional fee amount; unset or unparsable means no fee.
func feeFromEnv(key string) *uint64 {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	amount, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil
	}
	return &amount
}
