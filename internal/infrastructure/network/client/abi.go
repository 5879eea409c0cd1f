package client

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ERC20 ABI minimal part for balanceOf, decimals and symbol
const erc20ABI = `[
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"payable":false,"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"payable":false,"stateMutability":"view","type":"function"}
]`

// donationABI is the part of the donation/NFT contract this service calls.
const donationABI = `[
{"inputs":[{"name":"message","type":"string"}],"name":"donate","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"name":"tokenAddress","type":"address"},{"name":"amount","type":"uint256"},{"name":"message","type":"string"}],"name":"donateToken","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"name":"donationIndex","type":"uint256"}],"name":"claimNFT","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[],"name":"getAllDonations","outputs":[{"components":[{"name":"donor","type":"address"},{"name":"amount","type":"uint256"},{"name":"timestamp","type":"uint256"},{"name":"message","type":"string"},{"name":"tokenAddress","type":"address"},{"name":"assetType","type":"uint8"}],"name":"","type":"tuple[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"donor","type":"address"}],"name":"getDonationIndices","outputs":[{"name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"donationIndex","type":"uint256"}],"name":"isDonationClaimed","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"name":"account","type":"address"}],"name":"hasReceivedNFT","outputs":[{"name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedERC20ABI    abi.ABI
	parsedDonationABI abi.ABI
	parseABIsOnce     sync.Once
)

func initParsedABIs() {
	parseABIsOnce.Do(func() {
		var err error
		parsedERC20ABI, err = abi.JSON(strings.NewReader(erc20ABI))
		if err != nil {
			// This is a critical error during initialization, panic is appropriate
			panic(fmt.Sprintf("failed to parse ERC20 ABI: %v", err))
		}
		parsedDonationABI, err = abi.JSON(strings.NewReader(donationABI))
		if err != nil {
			panic(fmt.Sprintf("failed to parse donation ABI: %v", err))
		}
	})
}

// ERC20ABI returns the parsed minimal ERC20 ABI.
func ERC20ABI() abi.ABI {
	initParsedABIs()
	return parsedERC20ABI
}

// DonationABI returns the parsed donation contract ABI.
func DonationABI() abi.ABI {
	initParsedABIs()
	return parsedDonationABI
}
