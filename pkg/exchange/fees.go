package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openbilateral/bilateral/pkg/exchange/types"
)

// FeeDenom is the denom creation fees are charged in. The host fee module
// only accepts custom fees in this denom.
const FeeDenom = "nhash"

// CreationFee builds the single charge instruction for a configured creation
// fee. The contract address goes in From because a contract can only sign for
// itself; the host still collects the amount from the transaction sender and
// routes the admin its share.
func CreationFee(amount uint64, feeType string, contractAddr, admin common.Address) types.ChargeFee {
	return types.ChargeFee{
		Amount:    types.NewCoin(amount, FeeDenom),
		Name:      fmt.Sprintf("%s creation fee", feeType),
		From:      contractAddr,
		Recipient: admin,
	}
}
