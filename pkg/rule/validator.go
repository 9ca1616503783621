// Package rule 封装 go-playground/validator，统一使用 `rule` 标签.
//
// 字段名取自 mapstructure（其次 json）标签，错误信息因此直接对应配置键，
// 例如 "server.port: must be <= 65535".
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// TagName 校验规则使用的结构体标签.
const TagName = "rule"

var (
	inst *validator.Validate
	once sync.Once
)

func initValidator() {
	inst = validator.New(validator.WithRequiredStructEnabled())
	inst.SetTagName(TagName)
	inst.RegisterTagNameFunc(fieldName)
}

// fieldName 优先取 mapstructure 标签，其次 json，均缺省时用字段名.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"mapstructure", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return f.Name
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate {
	once.Do(initValidator)

	return inst
}

// RegisterValidation 注册自定义规则.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	return Engine().RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 注册规则别名.
func RegisterAlias(alias, rules string) {
	Engine().RegisterAlias(alias, rules)
}

// ValidateStruct 校验结构体，失败时返回 validator.ValidationErrors.
func ValidateStruct(s any) error {
	return Engine().Struct(s)
}

// ValidateVar 按规则校验单个值，例如 ValidateVar(size, "oneof=500 250 100").
func ValidateVar(field any, tag string) error {
	return Engine().Var(field, tag)
}

// ValidationErrors 字段路径到可读信息的映射.
type ValidationErrors map[string]string

// Error 按字段路径排序后拼接.
func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}

	return strings.Join(parts, "; ")
}

// Errors 把 validator 的错误转换为 ValidationErrors；其它错误返回 nil.
// 字段路径去掉顶层结构体名，例如 AppConfig.server.port -> server.port.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))

	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}

		out[path] = message(fe)
	}

	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be >= " + fe.Param()
	case "max", "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "ip":
		return "must be an IP address"
	default:
		return fmt.Sprintf("failed %q rule", fe.Tag())
	}
}
