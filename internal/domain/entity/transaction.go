package entity

// TransactionOutcome is produced by every state-changing operation. It is
// never partially constructed: Success=true always carries a non-empty
// TxHash, Success=false always carries a descriptive Message.
type TransactionOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TxHash  string `json:"txHash,omitempty"`
}

// Failure builds a failed outcome with the given message.
func Failure(message string) TransactionOutcome {
	return TransactionOutcome{Success: false, Message: message}
}

// Confirmed builds a successful outcome for a mined transaction.
func Confirmed(message, txHash string) TransactionOutcome {
	return TransactionOutcome{Success: true, Message: message, TxHash: txHash}
}

// BatchItemOutcome pairs one input of a bulk operation with its outcome.
// One item's failure does not abort the rest of the batch.
type BatchItemOutcome struct {
	Item    string             `json:"item"`
	Outcome TransactionOutcome `json:"outcome"`
}
