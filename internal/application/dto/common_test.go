package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_DefaultPage(t *testing.T) {
	cases := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"vacía", PageRequest{}, PageRequest{Limit: DefaultPageLimit}},
		{"negativos", PageRequest{Limit: -5, Offset: -1}, PageRequest{Limit: DefaultPageLimit}},
		{"dentro de rango", PageRequest{Limit: 50, Offset: 40}, PageRequest{Limit: 50, Offset: 40}},
		{"en el tope", PageRequest{Limit: MaxPageLimit}, PageRequest{Limit: MaxPageLimit}},
		{"sobre el tope", PageRequest{Limit: 1000, Offset: 10}, PageRequest{Limit: MaxPageLimit, Offset: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := tc.in
			page.DefaultPage()
			assert.Equal(t, tc.want, page)
		})
	}
}
