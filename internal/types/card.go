package types

// CardType selects the capability profile encoded into a smart card's
// delegation scope.
type CardType string

const (
	// CardTypeTransfer grants transfer/approve on whitelisted token contracts only.
	CardTypeTransfer CardType = "transfer"
	// CardTypeTrade additionally whitelists DEX routers and swap selectors.
	CardTypeTrade CardType = "trade"
)

// CardStatus is the lifecycle state of a smart card.
type CardStatus string

const (
	CardStatusPending CardStatus = "pending"
	CardStatusActive  CardStatus = "active"
	CardStatusRevoked CardStatus = "revoked"
	CardStatusExpired CardStatus = "expired"
)

// AccountStatus describes a smart account's deployment state.
type AccountStatus string

const (
	AccountStatusNone           AccountStatus = "none"
	AccountStatusCounterfactual AccountStatus = "counterfactual"
	AccountStatusDeployed       AccountStatus = "deployed"
)
