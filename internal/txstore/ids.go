package txstore

import "github.com/google/uuid"

// ParseTransactionID parses the string form of a TransactionInfo.ID, as
// returned by introspection.
func ParseTransactionID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// transactionIDBytes returns the 16-byte wire representation of a
// transaction correlation ID.
func transactionIDBytes(id uuid.UUID) []byte {
	return id[:]
}
