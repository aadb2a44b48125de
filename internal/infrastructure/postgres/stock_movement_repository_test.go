package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func TestBuildFilter_Empty(t *testing.T) {
	where, args := buildFilter(repository.MovementFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildFilter_AllFields(t *testing.T) {
	actor := "user-9"
	reason := entity.ReasonSale
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	where, args := buildFilter(repository.MovementFilter{
		Search: " peluche ", ActorID: &actor, Reason: &reason, From: &from, To: &to,
	})

	assert.Equal(t,
		" WHERE (p.name ILIKE $1 OR p.sku ILIKE $1) AND m.actor_id = $2 AND m.reason = $3 AND m.at >= $4 AND m.at <= $5",
		where)
	assert.Equal(t, []any{"%peluche%", "user-9", "SALE", from, to}, args)
}

func TestKindTables_CoverMovableKinds(t *testing.T) {
	for _, kind := range entity.LocationKinds {
		_, ok := kindTables[kind]
		if kind == entity.LocationNotAssigned {
			assert.False(t, ok, "NOT_ASSIGNED no debe tener tabla")
			continue
		}
		assert.True(t, ok, "falta tabla para %s", kind)
	}
}

func TestAllInventoryUnion(t *testing.T) {
	q := allInventoryUnion()
	assert.Contains(t, q, "FROM box_bin_inventory")
	assert.Contains(t, q, "FROM rack_inventory")
	assert.Equal(t, len(kindTables)-1, strings.Count(q, "UNION ALL"))
}
