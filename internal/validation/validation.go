// Package validation содержит функции валидации входных данных.
package validation

import (
	"regexp"
	"strings"
)

var orderNumberRe = regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)

// IsValidEmail выполняет минимальную проверку адреса электронной почты.
func IsValidEmail(email string) bool {
	if email == "" || strings.ContainsAny(email, " \t") {
		return false
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if strings.Contains(domain, "@") {
		return false
	}
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// IsValidOrderNumber проверяет формат внешнего номера заказа ORD-XXXXXXXX.
func IsValidOrderNumber(number string) bool {
	return orderNumberRe.MatchString(number)
}
