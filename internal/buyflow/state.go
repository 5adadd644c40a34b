package buyflow

import "fmt"

// State is a step of the purchase flow.
type State int

const (
	Idle State = iota
	Approving
	AwaitingAllowanceRefresh
	ReadyToMint
	Minting
	Succeeded
	Failed
)

var stateNames = [...]string{
	Idle:                     "idle",
	Approving:                "approving",
	AwaitingAllowanceRefresh: "awaiting_allowance_refresh",
	ReadyToMint:              "ready_to_mint",
	Minting:                  "minting",
	Succeeded:                "succeeded",
	Failed:                   "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Variant selects how a toast is rendered.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a transient user notification.
type Toast struct {
	Title       string
	Description string
	Variant     Variant
}

func success(desc string) Toast {
	return Toast{Title: "Success", Description: desc, Variant: VariantDefault}
}

func failure(desc string) Toast {
	return Toast{Title: "Error", Description: desc, Variant: VariantDestructive}
}

const (
	msgApproveUnavailable = "Please connect your wallet and ensure tokens are deployed"
	msgApproveOK          = "Token approval successful! You can now mint shares."
	msgApproveFailed      = "Failed to approve tokens. Please try again."
	msgMintUnavailable    = "Please ensure contracts are deployed"
	msgNeedApproval       = "Please approve tokens first"
	msgInvalidAmount      = "Please enter a valid share amount"
	msgConnectWallet      = "Please connect your wallet"
	msgMintOK             = "Shares minted successfully!"
	msgMintFailed         = "Failed to mint shares. Please try again."
)
