package constants

import "math/big"

// MaxUint256 is 2^256 - 1.
var MaxUint256 = func() *big.Int {
	val := new(big.Int)
	val.SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	return val
}()

// Root Network chain IDs.
const (
	RootNetworkChainID = "7668"
	PorciniChainID     = "7672"
)

// Porcini testnet endpoint and the collection search contract deployed there.
const (
	PorciniRPC            = "https://porcini.rootnet.app/archive"
	PorciniSearchContract = "0x130Db38980De698796F01873C4a28B3581428422"
)
