package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Endpoint string `validate:"required,url"`
	Kind     string `validate:"required,oneof=webpush fcm"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Endpoint: "https://push.example.com/abc", Kind: "webpush"}))

	errs := Validate(sample{Endpoint: "not a url", Kind: "sms"})
	assert.Equal(t, "url", errs["Endpoint"])
	assert.Equal(t, "oneof", errs["Kind"])
}
