package types

import "github.com/ethereum/go-ethereum/common"

const (
	ContractType    = "bilateral-trade"
	ContractVersion = "2.0.0"
)

// ContractInfo is the contract-wide admin and fee policy record. A nil fee
// means no fee is charged on that creation path; a configured fee must be
// strictly positive.
type ContractInfo struct {
	Admin           common.Address `json:"admin"`
	BindName        string         `json:"bind_name"`
	ContractName    string         `json:"contract_name"`
	ContractType    string         `json:"contract_type"`
	ContractVersion string         `json:"contract_version"`
	AskFee          *uint64        `json:"ask_fee,omitempty"`
	BidFee          *uint64        `json:"bid_fee,omitempty"`
}

func NewContractInfo(admin common.Address, bindName, contractName string, askFee, bidFee *uint64) ContractInfo {
	return ContractInfo{
		Admin:           admin,
		BindName:        bindName,
		ContractName:    contractName,
		ContractType:    ContractType,
		ContractVersion: ContractVersion,
		AskFee:          askFee,
		BidFee:          bidFee,
	}
}
