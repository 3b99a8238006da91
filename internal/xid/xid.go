package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

func New(prefix string) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixNano(), hex.EncodeToString(buf))
}

// InvoiceNumber builds an opaque, human-scannable invoice number:
// INV-YYYYMMDD-HHMMSS-RRR. Uniqueness is enforced by the ledger store;
// callers regenerate on conflict.
func InvoiceNumber(at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("INV-%s-%s-%03d", at.Format("20060102"), at.Format("150405"), randomSuffix(1000))
}

// PaymentNumber builds a payment receipt number: PAY-<unix-ms>-RRR.
func PaymentNumber(at time.Time) string {
	return fmt.Sprintf("PAY-%d-%03d", at.UTC().UnixMilli(), randomSuffix(1000))
}

func randomSuffix(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}
