package payments_test

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"ticketly/internal/payments"
)

func TestSignFieldsKnownVector(t *testing.T) {
	params := map[string]string{
		"amount":   "150000",
		"currency": "KZT",
		"orderId":  "3fa85f64-5717-4562-b3fc-2c963f66afa6",
		"teamSlug": "ticketly",
	}

	// Values concatenated in alphabetical order of parameter names, with the
	// password appended last.
	raw := "150000" + "KZT" + "3fa85f64-5717-4562-b3fc-2c963f66afa6" + "ticketly" + "secret"
	want := fmt.Sprintf("%x", sha256.Sum256([]byte(raw)))

	assert.Equal(t, want, payments.SignFields(params, "secret"))
}

func TestSignFieldsOrderIndependent(t *testing.T) {
	a := payments.SignFields(map[string]string{
		"teamSlug":  "ticketly",
		"paymentId": "pay-42",
	}, "secret")
	b := payments.SignFields(map[string]string{
		"paymentId": "pay-42",
		"teamSlug":  "ticketly",
	}, "secret")

	assert.Equal(t, a, b)
}

func TestSignFieldsSensitivity(t *testing.T) {
	base := map[string]string{
		"orderId":  "order-1",
		"teamSlug": "ticketly",
	}
	token := payments.SignFields(base, "secret")

	changedValue := payments.SignFields(map[string]string{
		"orderId":  "order-2",
		"teamSlug": "ticketly",
	}, "secret")
	assert.NotEqual(t, token, changedValue)

	changedPassword := payments.SignFields(base, "other")
	assert.NotEqual(t, token, changedPassword)

	extraParam := payments.SignFields(map[string]string{
		"orderId":   "order-1",
		"teamSlug":  "ticketly",
		"paymentId": "pay-1",
	}, "secret")
	assert.NotEqual(t, token, extraParam)
}
