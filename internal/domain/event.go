package domain

// Event types published to the messaging collaborator.
const (
	EventWalletCreated  = "WALLET_CREATED"
	EventWalletFrozen   = "WALLET_FROZEN"
	EventWalletUnfrozen = "WALLET_UNFROZEN"
	EventWalletClosed   = "WALLET_CLOSED"
	EventDeposit        = "DEPOSIT"
	EventWithdrawal     = "WITHDRAWAL"
	EventTransferIn     = "TRANSFER_IN"
	EventTransferOut    = "TRANSFER_OUT"
)

// Event describes a wallet domain event.
type Event struct {
	Owner         string `json:"owner_id"`
	WalletID      int64  `json:"wallet_id"`
	EventType     string `json:"event_type"`
	Amount        string `json:"amount,omitempty"`
	Currency      string `json:"currency"`
	TransactionID int64  `json:"transaction_id,omitempty"`
}
