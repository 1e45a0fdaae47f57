package authz

import (
	"testing"

	"github.com/mmeshcher/eshop-system/internal/model"
)

func TestCanAccessOrder(t *testing.T) {
	owner := &model.User{ID: 1, Role: model.RoleUser}
	stranger := &model.User{ID: 2, Role: model.RoleUser}
	admin := &model.User{ID: 3, Role: model.RoleAdmin}
	order := &model.Order{ID: 10, UserID: 1}

	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{name: "owner", user: owner, want: true},
		{name: "stranger", user: stranger, want: false},
		{name: "admin", user: admin, want: true},
		{name: "nil user", user: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessOrder(tt.user, order); got != tt.want {
				t.Fatalf("CanAccessOrder = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanPayOrder(t *testing.T) {
	owner := &model.User{ID: 1, Role: model.RoleUser}
	admin := &model.User{ID: 3, Role: model.RoleAdmin}
	order := &model.Order{ID: 10, UserID: 1}

	if !CanPayOrder(owner, order) {
		t.Fatalf("owner must be able to pay own order")
	}

	// Администратор видит чужой заказ, но оплатить его не может.
	if CanPayOrder(admin, order) {
		t.Fatalf("admin must not be able to pay another user's order")
	}

	if !CanAccessOrder(admin, order) {
		t.Fatalf("admin must be able to read another user's order")
	}
}
