package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"staff-attendance/internal/model"
)

// RegisterValidators 向 gin 的校验引擎注册自定义 tag：
//   - ymd:     YYYY-MM-DD
//   - ym:      YYYY-MM
//   - hhmm:    HH:MM（24 小时制）
//   - weekday: Sunday … Saturday
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding 校验引擎不是 validator/v10")
	}

	rules := map[string]validator.Func{
		"ymd":     layoutRule("2006-01-02"),
		"ym":      layoutRule("2006-01"),
		"hhmm":    layoutRule("15:04"),
		"weekday": func(fl validator.FieldLevel) bool { return model.IsValidWeekday(fl.Field().String()) },
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
		}
	}
	return nil
}

func layoutRule(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != len(layout) {
			return false
		}
		_, err := time.Parse(layout, s)
		return err == nil
	}
}
