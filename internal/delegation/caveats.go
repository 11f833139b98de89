// Package delegation encodes caveat-scoped delegation structures in the
// format expected by the on-chain delegation manager and its caveat
// enforcer contracts.
package delegation

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cardrail/cardrail-api/internal/types"
)

// Caveat enforcer contracts deployed alongside the delegation manager. The
// same addresses are used across supported chains via deterministic deploys.
const (
	AllowedTargetsEnforcer = "0x7F20f61b1f09b08D970938F6fa563634d265c4fE"
	AllowedMethodsEnforcer = "0x2c21fD0Cb9DC8445CB3fb0DC7E66d8Ce81E3a07a"
	ValueLteEnforcer       = "0x92Bf12322527cAA612fd31a0e810472BBB106A8F"
)

// RootAuthority marks a delegation chained directly off the delegator's own
// account rather than off another delegation.
const RootAuthority = "0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

// MaxUint256Hex is the widest representable value cap.
const MaxUint256Hex = "0x" + "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"

// ZeroValueHex is the value-cap term the toolkit emits by default.
const ZeroValueHex = "0x" + "0000000000000000000000000000000000000000000000000000000000000000"

// BuildScope constructs an unsigned delegation whose caveats restrict the
// delegate to the given target contracts and function selectors. The emitted
// value cap follows the toolkit default of zero; callers that need native
// value to flow must widen it afterwards.
func BuildScope(delegator, delegate string, targets []common.Address, selectors [][]byte) (types.UnsignedDelegation, error) {
	if len(targets) == 0 {
		return types.UnsignedDelegation{}, fmt.Errorf("delegation scope requires at least one target contract")
	}
	if len(selectors) == 0 {
		return types.UnsignedDelegation{}, fmt.Errorf("delegation scope requires at least one allowed selector")
	}

	salt, err := randomSalt()
	if err != nil {
		return types.UnsignedDelegation{}, err
	}

	return types.UnsignedDelegation{
		Delegate:  delegate,
		Delegator: delegator,
		Authority: RootAuthority,
		Salt:      salt,
		Caveats: []types.CaveatStruct{
			{Enforcer: AllowedTargetsEnforcer, Terms: encodeTargets(targets)},
			{Enforcer: AllowedMethodsEnforcer, Terms: encodeSelectors(selectors)},
			{Enforcer: ValueLteEnforcer, Terms: ZeroValueHex},
		},
	}, nil
}

// encodeTargets concatenates the 20-byte target addresses.
func encodeTargets(targets []common.Address) string {
	var b strings.Builder
	b.WriteString("0x")
	for _, target := range targets {
		b.WriteString(hex.EncodeToString(target.Bytes()))
	}
	return b.String()
}

// encodeSelectors concatenates the 4-byte function selectors.
func encodeSelectors(selectors [][]byte) string {
	var b strings.Builder
	b.WriteString("0x")
	for _, sel := range selectors {
		b.WriteString(hex.EncodeToString(sel[:4]))
	}
	return b.String()
}

func randomSalt() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate delegation salt: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}
