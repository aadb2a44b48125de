package postgres

import "github.com/jhoicas/inventario-ledger/internal/domain/entity"

// kindTable describe dónde vive cada tipo de ubicación. Todas las tablas de inventario
// comparten forma; solo cambian nombres de tabla y de la columna FK a la ubicación.
type kindTable struct {
	inventory      string // tabla de inventario por ubicación
	locationColumn string // FK en la tabla de inventario
	locations      string // tabla de ubicaciones del tipo
	codeColumn     string // código legible de la ubicación
}

// kindTables agregar un tipo = una entrada aquí + una migración.
var kindTables = map[entity.LocationKind]kindTable{
	entity.LocationBoxBin:            {"box_bin_inventory", "box_bin_id", "box_bins", "bin_code"},
	entity.LocationSingleClawMachine: {"single_claw_machine_inventory", "machine_id", "single_claw_machines", "machine_code"},
	entity.LocationDoubleClawMachine: {"double_claw_machine_inventory", "machine_id", "double_claw_machines", "machine_code"},
	entity.LocationKeychainMachine:   {"keychain_machine_inventory", "machine_id", "keychain_machines", "machine_code"},
	entity.LocationFourCornerMachine: {"four_corner_machine_inventory", "machine_id", "four_corner_machines", "machine_code"},
	entity.LocationPusherMachine:     {"pusher_machine_inventory", "machine_id", "pusher_machines", "machine_code"},
	entity.LocationCabinet:           {"cabinet_inventory", "cabinet_id", "cabinets", "cabinet_code"},
	entity.LocationRack:              {"rack_inventory", "rack_id", "racks", "rack_code"},
}

// LocationTable tabla y columna de código de las ubicaciones de un tipo (herramientas de seed).
func LocationTable(kind entity.LocationKind) (table, codeColumn string, ok bool) {
	t, ok := kindTables[kind]
	return t.locations, t.codeColumn, ok
}
