// Package authz содержит предикаты доступа к заказам.
package authz

import "github.com/mmeshcher/eshop-system/internal/model"

// CanAccessOrder разрешает чтение заказа владельцу и администратору.
func CanAccessOrder(u *model.User, o *model.Order) bool {
	if u == nil || o == nil {
		return false
	}
	return o.UserID == u.ID || u.Role == model.RoleAdmin
}

// CanPayOrder разрешает оплату заказа только его владельцу.
// Администратор не может оплатить чужой заказ.
func CanPayOrder(u *model.User, o *model.Order) bool {
	if u == nil || o == nil {
		return false
	}
	return o.UserID == u.ID
}
