package handlers

import (
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		from models.User
		want string
	}{
		{name: "first and last", from: models.User{FirstName: "Анна", LastName: "Ковалёва", Username: "anna"}, want: "Анна Ковалёва"},
		{name: "first only", from: models.User{FirstName: "Анна", Username: "anna"}, want: "Анна"},
		{name: "last only", from: models.User{LastName: "Ковалёва"}, want: "Ковалёва"},
		{name: "username fallback", from: models.User{Username: "anna"}, want: "anna"},
		{name: "blank names", from: models.User{FirstName: " ", Username: "anna"}, want: "anna"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(&tt.from))
		})
	}
}
