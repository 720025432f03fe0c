package gamepad

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ID is the stable, reopenable identifier of a gamepad: "<slot>-<guid>".
// It survives reconnects as long as the device comes back in the same
// enumeration slot with the same hardware GUID.
type ID string

// InstanceID is the backend's transient identifier for one connection.
type InstanceID int32

const idSegments = 6

// DeviceGUID derives a stable hardware GUID from a vendor and product id,
// laid out like an SDL joystick GUID: little-endian vendor at byte 4 and
// product at byte 8. A device reporting neither has no identity and gets
// uuid.Nil.
func DeviceGUID(vendor, product uint16) uuid.UUID {
	var g uuid.UUID
	if vendor == 0 && product == 0 {
		return g
	}
	binary.LittleEndian.PutUint16(g[4:], vendor)
	binary.LittleEndian.PutUint16(g[8:], product)
	return g
}

// MakeID builds the identifier for the device with guid at slot.
func MakeID(slot int, guid uuid.UUID) ID {
	return ID(strconv.Itoa(slot) + "-" + guid.String())
}

// ParseSlot extracts the slot index from id. The id must have exactly six
// dash separated segments and an integer first segment; a minus sign would
// add a seventh segment, so the slot is never negative.
func ParseSlot(id ID) (int, error) {
	data := strings.Split(string(id), "-")
	if len(data) != idSegments {
		return -1, &E{C: ErrInvalidID, Op: "parse", Msg: string(id)}
	}

	slot, err := strconv.Atoi(data[0])
	if err != nil {
		return -1, &E{C: ErrInvalidID, Op: "parse", Msg: string(id), Err: err}
	}

	return slot, nil
}
