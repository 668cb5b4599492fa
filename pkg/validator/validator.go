// Package validator 注册自定义binding校验规则
//
// 用法：在dto中直接写tag
//
//	ISBN   string `json:"isbn" binding:"required,isbn13"`
//	Status string `json:"status" binding:"required,loanstatus"`
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var isbn13Pattern = regexp.MustCompile(`^[0-9]{13}$`)

// NormalizeISBN 去掉连字符与空格（978-7-115-42802-8 → 9787115428028）
func NormalizeISBN(isbn string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(isbn))
}

// IsISBN13 是否为13位数字ISBN（允许连字符分隔）
func IsISBN13(isbn string) bool {
	return isbn13Pattern.MatchString(NormalizeISBN(isbn))
}

// Register 向validator实例注册isbn13规则，以及按枚举值生成的规则
func Register(v *validator.Validate, enums map[string][]string) error {
	if err := v.RegisterValidation("isbn13", func(fl validator.FieldLevel) bool {
		return IsISBN13(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("注册isbn13校验失败: %w", err)
	}

	for tag, values := range enums {
		allowed := make(map[string]struct{}, len(values))
		for _, val := range values {
			allowed[val] = struct{}{}
		}
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			_, ok := allowed[fl.Field().String()]
			return ok
		}); err != nil {
			return fmt.Errorf("注册%s校验失败: %w", tag, err)
		}
	}
	return nil
}

// RegisterGin 注册到gin的默认binding引擎
func RegisterGin(enums map[string][]string) error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin binding引擎不是validator/v10")
	}
	return Register(v, enums)
}
