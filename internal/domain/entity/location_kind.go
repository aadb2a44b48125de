package entity

import "strings"

// LocationKind tipo de ubicación física (bin, rack, gabinete, máquinas).
type LocationKind string

// Tipos de ubicación. NOT_ASSIGNED existe en el catálogo pero no participa en movimientos.
const (
	LocationBoxBin            LocationKind = "BOX_BIN"
	LocationSingleClawMachine LocationKind = "SINGLE_CLAW_MACHINE"
	LocationDoubleClawMachine LocationKind = "DOUBLE_CLAW_MACHINE"
	LocationKeychainMachine   LocationKind = "KEYCHAIN_MACHINE"
	LocationFourCornerMachine LocationKind = "FOUR_CORNER_MACHINE"
	LocationPusherMachine     LocationKind = "PUSHER_MACHINE"
	LocationCabinet           LocationKind = "CABINET"
	LocationRack              LocationKind = "RACK"
	LocationNotAssigned       LocationKind = "NOT_ASSIGNED"
)

// LocationKinds lista cerrada de tipos conocidos, en orden estable.
var LocationKinds = []LocationKind{
	LocationBoxBin,
	LocationSingleClawMachine,
	LocationDoubleClawMachine,
	LocationKeychainMachine,
	LocationFourCornerMachine,
	LocationPusherMachine,
	LocationCabinet,
	LocationRack,
	LocationNotAssigned,
}

// ParseLocationKind acepta el nombre en mayúsculas o minúsculas y con guiones
// (ej. "box-bin", "box_bin", "BOX_BIN"). ok es false para tipos desconocidos.
func ParseLocationKind(s string) (LocationKind, bool) {
	norm := LocationKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, k := range LocationKinds {
		if k == norm {
			return k, true
		}
	}
	return "", false
}
