package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// CreateAddress returns the address a CREATE transaction sent by sender with the given
// nonce deploys to: keccak256(rlp([sender, nonce]))[12:]
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	return crypto.CreateAddress(sender, nonce)
}
