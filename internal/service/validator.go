package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"InventorySync/internal/config"
	"InventorySync/internal/model"
)

// ValidationError 第一条不合法记录
type ValidationError struct {
	Index    int    // 记录下标
	RecordID string // 记录 id
	Field    string // JSON 字段名
	Rule     string // 失败的规则
	Value    interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("记录校验失败 [%d] id=%s field=%s rule=%s value=%v", e.Index, e.RecordID, e.Field, e.Rule, e.Value)
}

// Validator 规范化记录的 schema 校验（类型、必填、非负、取值范围）
type Validator struct {
	validate *validator.Validate
}

// NewValidator 注册与目录相关的规则：master_sku / sales_sku / inventory_channel / sales_channel
func NewValidator(catalog *config.Catalog) *Validator {
	v := validator.New()

	// 报错时使用 JSON 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	// Date 按字符串校验，零值即为空
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(model.Date); ok {
			return d.String()
		}
		return nil
	}, model.Date{})

	mustRegister(v, "master_sku", func(fl validator.FieldLevel) bool {
		return catalog.IsMasterSKU(fl.Field().String())
	})
	mustRegister(v, "sales_sku", func(fl validator.FieldLevel) bool {
		sku := fl.Field().String()
		return sku == model.BundlesSKU || catalog.IsMasterSKU(sku)
	})
	mustRegister(v, "inventory_channel", func(fl validator.FieldLevel) bool {
		return catalog.IsInventoryChannel(fl.Field().String())
	})
	mustRegister(v, "sales_channel", func(fl validator.FieldLevel) bool {
		return catalog.IsSalesChannel(fl.Field().String())
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("注册校验规则%s失败: %v", tag, err))
	}
}

// Validate 逐条校验，遇到第一条失败即返回 *ValidationError
func (v *Validator) Validate(records []model.Record) error {
	for i, rec := range records {
		err := v.validate.Struct(rec)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				Index:    i,
				RecordID: recordID(rec),
				Field:    fe.Field(),
				Rule:     fe.Tag(),
				Value:    fe.Value(),
			}
		}
		return fmt.Errorf("记录[%d]校验异常: %w", i, err)
	}
	return nil
}

func recordID(rec model.Record) string {
	switch r := rec.(type) {
	case model.InventoryRecord:
		return r.ID
	case model.SalesRecord:
		return r.ID
	}
	return ""
}
