package types

// DelegationStruct represents a signed delegation granting the CardRail agent
// scoped execution rights over a user's smart account. The structure matches
// the caveat-enforcer delegation format used by the on-chain delegation manager.
type DelegationStruct struct {
	Delegate  string         `json:"delegate"`
	Delegator string         `json:"delegator"`
	Authority string         `json:"authority"`
	Caveats   []CaveatStruct `json:"caveats"`
	Salt      string         `json:"salt"`
	Signature string         `json:"signature"`
}

// UnsignedDelegation is a delegation scope before the user has approved it.
// It deliberately has no signature field: an unsigned scope cannot be passed
// where a redeemable DelegationStruct is required.
type UnsignedDelegation struct {
	Delegate  string         `json:"delegate"`
	Delegator string         `json:"delegator"`
	Authority string         `json:"authority"`
	Caveats   []CaveatStruct `json:"caveats"`
	Salt      string         `json:"salt"`
}

// Signed attaches the user's signature, producing a redeemable delegation.
func (u UnsignedDelegation) Signed(signature string) DelegationStruct {
	return DelegationStruct{
		Delegate:  u.Delegate,
		Delegator: u.Delegator,
		Authority: u.Authority,
		Caveats:   u.Caveats,
		Salt:      u.Salt,
		Signature: signature,
	}
}

// CaveatStruct represents a single caveat in a delegation. Each caveat names
// an enforcer contract and the encoded terms that contract checks on-chain.
type CaveatStruct struct {
	Enforcer string `json:"enforcer"` // Address of the caveat enforcer contract
	Terms    string `json:"terms"`    // Encoded parameters defining the specific restrictions (hex string)
}
