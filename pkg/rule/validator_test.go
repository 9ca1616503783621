package rule_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/rule"
)

type listen struct {
	Host string `mapstructure:"host" rule:"ip"`
	Port int    `mapstructure:"port" rule:"min=1,max=65535"`
}

type sample struct {
	Server listen `mapstructure:"server"`
	Header string `json:"header,omitempty" rule:"required"`
	Kind   string `rule:"omitempty,oneof=folder file image"`
}

func TestValidateStructOK(t *testing.T) {
	s := sample{Server: listen{Host: "0.0.0.0", Port: 8080}, Header: "X-Token", Kind: "image"}
	assert.NoError(t, rule.ValidateStruct(s))
}

func TestErrorsUseConfigKeys(t *testing.T) {
	err := rule.ValidateStruct(sample{Server: listen{Host: "nope", Port: 70000}, Kind: "video"})
	require.Error(t, err)

	errs := rule.Errors(err)
	assert.Equal(t, rule.ValidationErrors{
		"server.host": "must be an IP address",
		"server.port": "must be <= 65535",
		"header":      "is required",
		"Kind":        "must be one of [folder file image]",
	}, errs)

	assert.Equal(t,
		"Kind: must be one of [folder file image]; header: is required; server.host: must be an IP address; server.port: must be <= 65535",
		errs.Error())
}

func TestErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, rule.Errors(errors.New("boom")))
	assert.Nil(t, rule.Errors(nil))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, rule.ValidateVar(250, "oneof=500 250 100"))
	assert.Error(t, rule.ValidateVar(42, "oneof=500 250 100"))
}

func TestRegisterValidationAndAlias(t *testing.T) {
	require.NoError(t, rule.RegisterValidation("lowercase_ext", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == strings.ToLower(fl.Field().String())
	}))
	rule.RegisterAlias("blobext", "required,lowercase_ext")

	assert.NoError(t, rule.ValidateVar(".png", "blobext"))
	assert.Error(t, rule.ValidateVar(".PNG", "blobext"))
	assert.Error(t, rule.ValidateVar("", "blobext"))
	assert.Same(t, rule.Engine(), rule.Engine())
}
